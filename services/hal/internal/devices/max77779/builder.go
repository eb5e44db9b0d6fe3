// services/hal/internal/devices/max77779/builder.go
package max77779adpt

import (
	"time"

	"periph.io/x/conn/v3/physic"

	"chargepath-go/drivers/max77779"
	"chargepath-go/services/hal/internal/halerr"
	"chargepath-go/services/hal/internal/registry"
	"chargepath-go/services/hal/internal/util"
)

// Params supplied via config.
type Params struct {
	Addr          int    `json:"addr,omitempty"`
	WlcEnPin      *int   `json:"wlc_en_pin,omitempty"`
	RtxEnPin      *int   `json:"rtx_en_pin,omitempty"`
	RxToRxOTG     bool   `json:"rx_to_rx_otg,omitempty"`
	OTGIlimMA     *int   `json:"otg_ilim_mA,omitempty"`
	OTGVbyp       uint8  `json:"otg_vbyp,omitempty"`
	Retries       int    `json:"retries,omitempty"`
	SampleEveryMS int    `json:"sample_every_ms,omitempty"`
	InitialUse    string `json:"initial_use_case,omitempty"`
}

func init() { registry.RegisterBuilder("max77779", builder{}) }

type builder struct{}

func (builder) Build(in registry.BuildInput) (registry.BuildOutput, error) {
	if in.BusRefType != "i2c" || in.BusRefID == "" {
		return registry.BuildOutput{}, halerr.ErrMissingBusRef
	}
	i2c, ok := in.Buses.ByID(in.BusRefID)
	if !ok {
		return registry.BuildOutput{}, halerr.ErrUnknownBus
	}

	var p Params
	if err := util.DecodeJSON(in.ParamsJSON, &p); err != nil {
		return registry.BuildOutput{}, err
	}
	cfg, err := p.config()
	if err != nil {
		return registry.BuildOutput{}, err
	}

	var initial max77779.UseCase
	if p.InitialUse != "" {
		u, ok := max77779.ParseUseCase(p.InitialUse)
		if !ok {
			return registry.BuildOutput{}, halerr.ErrUnknownMode
		}
		initial = u
	}

	dev := max77779.New(i2c, cfg)
	var port max77779.GPIO
	if in.Pins != nil {
		port = newPinPort(in.Pins)
	}
	ad := &adaptor{
		id:     in.DeviceID,
		bus:    in.BusRefID,
		dev:    dev,
		cfg:    cfg,
		now:    time.Now,
		logf:   hallog,
		hasPin: in.Pins != nil,
	}
	cfg.Log = func(msg string, err error) { ad.machineLog(msg, err) }
	ad.m = max77779.NewMachine(dev, port, cfg)

	if p.InitialUse != "" {
		if err := ad.setUseCase(initial); err != nil {
			return registry.BuildOutput{}, err
		}
	}

	out := registry.BuildOutput{
		Adaptor:     ad,
		BusID:       in.BusRefID,
		SampleEvery: time.Duration(util.ClampInt(p.SampleEveryMS, 0, 3_600_000)) * time.Millisecond,
	}
	if out.SampleEvery <= 0 {
		out.SampleEvery = 5 * time.Second
	}
	return out, nil
}

func (p Params) config() (max77779.Config, error) {
	cfg := max77779.DefaultConfig()
	if p.Addr != 0 {
		cfg.Address = uint16(p.Addr)
	}
	if p.Retries > 0 {
		cfg.Retries = util.ClampInt(p.Retries, 1, 10)
	}
	if p.WlcEnPin != nil {
		cfg.WlcEnGPIO = *p.WlcEnPin
	}
	if p.RtxEnPin != nil {
		cfg.RtxEnGPIO = *p.RtxEnPin
	}
	cfg.RxToRxOTG = p.RxToRxOTG
	if p.OTGIlimMA != nil {
		code, err := max77779.IlimCode(physic.ElectricCurrent(*p.OTGIlimMA) * physic.MilliAmpere)
		if err != nil {
			return cfg, halerr.ErrInvalidParams
		}
		cfg.OTGIlim = code
	}
	cfg.OTGVbyp = p.OTGVbyp
	if err := cfg.Validate(); err != nil {
		return cfg, halerr.ErrInvalidParams
	}
	return cfg, nil
}

func hallog(msg string) { println("[hal]", msg) }
