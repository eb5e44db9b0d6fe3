package main

import (
	"testing"

	"chargepath-go/drivers/max77779"
)

func TestLoadConfigFlagsOverride(t *testing.T) {
	o := options{
		addr:  0x6A,
		wlcEn: 5,
		rtxEn: 6,
		set:   map[string]bool{"addr": true, "rtx-en": true},
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != 0x6A || cfg.RtxEnGPIO != 6 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WlcEnGPIO != max77779.NoGPIO {
		t.Fatalf("unset flag applied: wlc_en = %d", cfg.WlcEnGPIO)
	}
}

func TestRunReturnsSetupErrors(t *testing.T) {
	if err := run(options{dtb: t.TempDir() + "/missing.dtb"}); err == nil {
		t.Fatal("missing device tree accepted")
	}
	if err := run(options{addr: 0, set: map[string]bool{"addr": true}}); err != max77779.ErrAddressZero {
		t.Fatalf("err = %v", err)
	}
}
