// usecasectl moves a MAX77779 charger to a use case from a Linux host and
// reports the resulting power-path state.
//
//	usecasectl -bus 1 -dtb /sys/firmware/fdt -to usb_otg
//	usecasectl -bus 1 -config device.json -watch 10s
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"chargepath-go/bus"
	"chargepath-go/drivers/max77779"
	"chargepath-go/drivers/max77779/dtconfig"
	"chargepath-go/services/config"
	"chargepath-go/services/hal"
	"chargepath-go/services/hal/periphio"
	"chargepath-go/types"
)

const (
	busID = "i2c0"
	devID = "charger"
)

type busFactory map[string]drivers.I2C

func (b busFactory) ByID(id string) (drivers.I2C, bool) {
	i, ok := b[id]
	return i, ok
}

type options struct {
	busName string
	addr    int
	cfgFile string
	dtb     string
	wlcEn   int
	rtxEn   int
	to      string
	watch   time.Duration
	set     map[string]bool // flags given explicitly
}

func main() {
	var o options
	flag.StringVar(&o.busName, "bus", "", "I2C bus name or number (default: first registered)")
	flag.IntVar(&o.addr, "addr", max77779.AddressDefault, "charger I2C address")
	flag.StringVar(&o.cfgFile, "config", "", "JSON device configuration; its \"hal\" key replaces the flags below")
	flag.StringVar(&o.dtb, "dtb", "", "flattened device tree to read charger platform data from")
	flag.IntVar(&o.wlcEn, "wlc-en", max77779.NoGPIO, "wireless receive enable line")
	flag.IntVar(&o.rtxEn, "rtx-en", max77779.NoGPIO, "reverse wireless transmit enable line")
	flag.StringVar(&o.to, "to", "", "target use case; empty only reports")
	flag.DurationVar(&o.watch, "watch", 0, "keep printing charger readings for this long")
	flag.Parse()
	log.SetFlags(0)

	o.set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if err := run(o); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(o options) (max77779.Config, error) {
	cfg := max77779.DefaultConfig()
	if o.dtb != "" {
		f, err := os.Open(o.dtb)
		if err != nil {
			return cfg, err
		}
		cfg, err = dtconfig.Load(f)
		f.Close()
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", o.dtb, err)
		}
	}
	// Explicit flags win over the device tree.
	if o.set["addr"] {
		cfg.Address = uint16(o.addr)
	}
	if o.set["wlc-en"] {
		cfg.WlcEnGPIO = o.wlcEn
	}
	if o.set["rtx-en"] {
		cfg.RtxEnGPIO = o.rtxEn
	}
	return cfg, cfg.Validate()
}

func run(o options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	i2cBus, err := i2creg.Open(o.busName)
	if err != nil {
		return err
	}
	defer i2cBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	go hal.Run(ctx, b.NewConnection("hal"), busFactory{busID: i2cBus}, periphio.New())

	conn := b.NewConnection("usecasectl")
	state := conn.Subscribe(hal.StateTopic())
	if o.cfgFile != "" {
		if err := config.PublishFile(conn, o.cfgFile); err != nil {
			return fmt.Errorf("%s: %w", o.cfgFile, err)
		}
	} else {
		conn.Publish(conn.NewMessage(hal.ConfigTopic(), types.HALConfig{Devices: []types.Device{{
			ID:     devID,
			Type:   "max77779",
			Params: params(cfg),
			BusRef: types.BusRef{Type: "i2c", ID: busID},
		}}}, true))
	}
	if err := awaitReady(ctx, state); err != nil {
		return err
	}

	if o.to != "" {
		rep, err := request(ctx, conn, "set_use_case", types.SetUseCase{UseCase: o.to})
		if err != nil {
			return err
		}
		log.Printf("set_use_case: %+v", rep)
	}

	if o.watch <= 0 {
		st, err := request(ctx, conn, "read_status", nil)
		if err != nil {
			return err
		}
		log.Printf("status: %+v", st)
		return nil
	}
	vals := conn.Subscribe(hal.CapTopic("charger", 0, "value"))
	done := time.After(o.watch)
	for {
		select {
		case m := <-vals.Channel():
			log.Printf("%+v", m.Payload)
		case <-done:
			return nil
		}
	}
}

func params(cfg max77779.Config) map[string]any {
	return map[string]any{
		"addr":         int(cfg.Address),
		"wlc_en_pin":   cfg.WlcEnGPIO,
		"rtx_en_pin":   cfg.RtxEnGPIO,
		"rx_to_rx_otg": cfg.RxToRxOTG,
		"otg_ilim_mA":  int(max77779.IlimCurrent(cfg.OTGIlim) / physic.MilliAmpere),
		"otg_vbyp":     cfg.OTGVbyp,
		"retries":      cfg.Retries,
	}
}

func awaitReady(ctx context.Context, state *bus.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for {
		select {
		case m := <-state.Channel():
			st := m.Payload.(types.HALState)
			switch st.Level {
			case "ready":
				return nil
			case "error":
				return fmt.Errorf("hal: %s: %s", st.Status, st.Error)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func request(ctx context.Context, conn *bus.Connection, verb string, payload any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	reply, err := conn.RequestWait(ctx, conn.NewMessage(hal.CapTopic("charger", 0, "control", verb), payload, false))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}
	if e, ok := reply.Payload.(types.ErrorReply); ok {
		return nil, fmt.Errorf("%s: %s", verb, e.Error)
	}
	return reply.Payload, nil
}
