package max77779

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// fakeI2C is an 8-bit register file behind Tx.
type fakeI2C struct {
	addr  uint16
	regs  [256]byte
	fails int // next N transactions fail
	txs   int
}

var _ drivers.I2C = (*fakeI2C)(nil)

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.txs++
	if addr != f.addr {
		return errors.New("no ack")
	}
	if f.fails > 0 {
		f.fails--
		return errors.New("bus error")
	}
	switch {
	case len(w) == 1 && len(r) == 1:
		r[0] = f.regs[w[0]]
	case len(w) == 2 && len(r) == 0:
		f.regs[w[0]] = w[1]
	default:
		return errors.New("unexpected transaction shape")
	}
	return nil
}

func TestDeviceRetriesWithinBudget(t *testing.T) {
	bus := &fakeI2C{addr: AddressDefault}
	bus.regs[regChgCnfg00] = uint8(ModeOTGBoostOn)
	d := New(bus, DefaultConfig())

	bus.fails = 2
	m, err := d.ReadMode()
	if err != nil {
		t.Fatalf("read with 2 transient failures: %v", err)
	}
	if m != ModeOTGBoostOn {
		t.Fatalf("mode = %s", m)
	}
	if bus.txs != 3 {
		t.Fatalf("txs = %d, want 3", bus.txs)
	}

	bus.fails = 3
	if err := d.WriteReg(regChgCnfg00, 0); err == nil {
		t.Fatal("expected failure after retries exhausted")
	}
}

func TestDeviceUpdateReg(t *testing.T) {
	bus := &fakeI2C{addr: AddressDefault}
	bus.regs[regChgCnfg12] = 0xFF
	d := New(bus, Config{})

	if err := d.UpdateReg(regChgCnfg12, cnfg12WcInSel, 0); err != nil {
		t.Fatal(err)
	}
	if got := bus.regs[regChgCnfg12]; got != 0xBF {
		t.Fatalf("reg = %#x, want 0xBF", got)
	}

	bus.txs = 0
	if err := d.UpdateReg(regChgCnfg12, cnfg12WcInSel, 0); err != nil {
		t.Fatal(err)
	}
	if bus.txs != 1 {
		t.Fatalf("unchanged field should skip the write, txs = %d", bus.txs)
	}
}

func TestDeviceDrivesMachine(t *testing.T) {
	bus := &fakeI2C{addr: AddressDefault}
	bus.regs[regChgCnfg05] = 0x01
	cfg := DefaultConfig()
	cfg.Sleep = func(time.Duration) {}
	d := New(bus, cfg)
	m := NewMachine(d, nil, cfg)

	if err := m.TransitionTo(USBOTG); err != nil {
		t.Fatal(err)
	}
	s := d.Snapshot()
	if s.Mode != ModeOTGBoostOn || s.OTGIlim != ilimDefaultCode {
		t.Fatalf("snapshot = %+v", s)
	}
	if err := m.TransitionTo(Standby); err != nil {
		t.Fatal(err)
	}
	s = d.Snapshot()
	if !s.Mode.Off() || s.OTGIlim != 0x01 {
		t.Fatalf("snapshot after exit = %+v", s)
	}
}

func TestSnapshotDecodes(t *testing.T) {
	bus := &fakeI2C{addr: AddressDefault}
	bus.regs[regChgCnfg12] = cnfg12ChgInSel
	bus.regs[regChgIntOK] = uint8(IntOKChgInOK | IntOKBatOK)
	s := New(bus, Config{}).Snapshot()
	if !s.ChgInSelected() || s.WcInSelected() {
		t.Fatalf("input select = %#x", s.InputSelect)
	}
	if !s.IntOK.Has(IntOKChgInOK) || s.IntOK.Has(IntOKWcInOK) {
		t.Fatalf("int ok = %#x", s.IntOK)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Config{}).Validate(); err != ErrAddressZero {
		t.Fatalf("zero config: err = %v", err)
	}
	c := DefaultConfig()
	c.Address = 0
	if err := c.Validate(); err != ErrAddressZero {
		t.Fatalf("err = %v", err)
	}
	c = DefaultConfig()
	c.OTGIlim = 0x10
	if err := c.Validate(); err != ErrIlimRange {
		t.Fatalf("err = %v", err)
	}
	c = DefaultConfig()
	c.OTGVbyp = 0x80
	if err := c.Validate(); err != ErrVbypRange {
		t.Fatalf("err = %v", err)
	}
}

func TestIlimConversion(t *testing.T) {
	cases := []struct {
		in   physic.ElectricCurrent
		code uint8
	}{
		{500 * physic.MilliAmpere, 0},
		{1000 * physic.MilliAmpere, 5},
		{1550 * physic.MilliAmpere, 10},
		{2000 * physic.MilliAmpere, 15},
	}
	for _, tc := range cases {
		got, err := IlimCode(tc.in)
		if err != nil || got != tc.code {
			t.Fatalf("IlimCode(%s) = %d, %v; want %d", tc.in, got, err, tc.code)
		}
	}
	if _, err := IlimCode(400 * physic.MilliAmpere); err != ErrIlimRange {
		t.Fatalf("below range: %v", err)
	}
	if _, err := IlimCode(2100 * physic.MilliAmpere); err != ErrIlimRange {
		t.Fatalf("above range: %v", err)
	}
	if got := IlimCurrent(5); got != 1000*physic.MilliAmpere {
		t.Fatalf("IlimCurrent(5) = %s", got)
	}
}

func TestParseUseCase(t *testing.T) {
	for _, uc := range UseCases() {
		got, ok := ParseUseCase(uc.String())
		if !ok || got != uc {
			t.Fatalf("ParseUseCase(%q) = %v, %v", uc.String(), got, ok)
		}
	}
	if _, ok := ParseUseCase("boost"); ok {
		t.Fatal("unknown name parsed")
	}
	if UseCase(99).String() != "invalid" {
		t.Fatal("out-of-range use case should print invalid")
	}
}
