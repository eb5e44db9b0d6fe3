package dtconfig

import (
	"encoding/binary"
	"testing"

	"github.com/u-root/u-root/pkg/dt"

	"chargepath-go/drivers/max77779"
)

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func gpioSpec(phandle, pin, flags uint32) []byte {
	b := append(u32(phandle), u32(pin)...)
	return append(b, u32(flags)...)
}

func chargerNode(props ...dt.Property) *dt.Node {
	base := []dt.Property{
		{Name: "compatible", Value: []byte("google,gs201\x00maxim,max77779chrg\x00")},
	}
	return &dt.Node{Name: "charger@69", Properties: append(base, props...)}
}

func TestIsCharger(t *testing.T) {
	if !IsCharger(chargerNode()) {
		t.Fatal("charger node not recognised in a compatible list")
	}
	other := &dt.Node{Name: "fg@36", Properties: []dt.Property{
		{Name: "compatible", Value: []byte("maxim,max77779fg\x00")},
	}}
	if IsCharger(other) {
		t.Fatal("fuel gauge node matched")
	}
	if IsCharger(&dt.Node{Name: "empty"}) {
		t.Fatal("node without compatible matched")
	}
}

func TestFromNodeFull(t *testing.T) {
	n := chargerNode(
		dt.Property{Name: "reg", Value: u32(0x69)},
		dt.Property{Name: "max77779,wlc-en", Value: gpioSpec(12, 3, 0)},
		dt.Property{Name: "max77779,rtx-en", Value: gpioSpec(12, 4, 1)},
		dt.Property{Name: "max77779,rx-to-rx-otg-en"},
		dt.Property{Name: "max77779,otg-ilim-ma", Value: u32(1500)},
		dt.Property{Name: "max77779,otg-vbyp", Value: u32(0x21)},
	)
	cfg, err := FromNode(n)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != 0x69 || cfg.WlcEnGPIO != 3 || cfg.RtxEnGPIO != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.RxToRxOTG {
		t.Fatal("rx-to-rx-otg flag lost")
	}
	if cfg.OTGIlim != 10 || cfg.OTGVbyp != 0x21 {
		t.Fatalf("ilim/vbyp = %d/%#x", cfg.OTGIlim, cfg.OTGVbyp)
	}
}

func TestFromNodeDefaults(t *testing.T) {
	cfg, err := FromNode(chargerNode())
	if err != nil {
		t.Fatal(err)
	}
	want := max77779.DefaultConfig()
	if cfg.Address != want.Address || cfg.OTGIlim != want.OTGIlim {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WlcEnGPIO != max77779.NoGPIO || cfg.RtxEnGPIO != max77779.NoGPIO || cfg.RxToRxOTG {
		t.Fatalf("absent properties should leave lines unwired: %+v", cfg)
	}
}

func TestFromNodeRejectsBadValues(t *testing.T) {
	cases := map[string]*dt.Node{
		"short gpio spec": chargerNode(dt.Property{Name: "max77779,wlc-en", Value: u32(3)}),
		"ilim too high":   chargerNode(dt.Property{Name: "max77779,otg-ilim-ma", Value: u32(5000)}),
		"vbyp too wide":   chargerNode(dt.Property{Name: "max77779,otg-vbyp", Value: u32(0x80)}),
	}
	for name, n := range cases {
		if _, err := FromNode(n); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
