// Package max77779 is a minimal TinyGo-friendly driver for the charger block of
// the MAX77779 PMIC, plus the use-case state machine that moves its shared power
// path between USB, wireless, OTG and DC configurations.
//
// Concurrency: nothing in this package locks. Device and Machine calls must be
// serialised by the caller (one charger-wide mutex).
package max77779

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

var (
	ErrAddressZero = errors.New("address must be non-zero (use AddressDefault)")
	ErrIlimRange   = errors.New("otg ilim code out of range")
	ErrVbypRange   = errors.New("otg vbyp code out of range")
)

// NoGPIO marks a GPIO line that is not present on the platform.
const NoGPIO = -1

// Regmap is the register access port the state machine drives.
type Regmap interface {
	ReadReg(reg uint8) (uint8, error)
	WriteReg(reg, val uint8) error
	UpdateReg(reg, mask, val uint8) error
}

// GPIO is the line-level port. Numbers < 0 never reach it.
type GPIO interface {
	SetLevel(n int, on bool) error
}

// Config carries platform data. Integer-only.
//
// Build it from DefaultConfig: in the zero value both GPIO fields name line 0
// rather than NoGPIO, and Validate rejects it for its zero address.
type Config struct {
	Address uint16
	Retries int // attempts per I2C transaction; 0 => 3

	WlcEnGPIO int  // wireless receive enable; NoGPIO if absent
	RtxEnGPIO int  // reverse wireless transmit enable; NoGPIO if absent
	RxToRxOTG bool // WLC_RX may add OTG without STANDBY

	OTGIlim uint8 // CHG_CNFG_05 OTG_ILIM code requested in OTG
	OTGVbyp uint8 // CHG_CNFG_11 VBYPSET code; 0 leaves hardware default

	// Settle is the delay after restoring the OTG current limit; 0 => 100ms.
	Settle time.Duration
	// Sleep and Log are injectable for tests; nil uses time.Sleep / println.
	Sleep func(time.Duration)
	Log   LogFunc
}

// DefaultConfig provides platform-neutral defaults with no GPIOs wired.
func DefaultConfig() Config {
	return Config{
		Address:   AddressDefault,
		Retries:   3,
		WlcEnGPIO: NoGPIO,
		RtxEnGPIO: NoGPIO,
		OTGIlim:   ilimDefaultCode,
	}
}

// Validate checks fields the machine relies upon.
func (c Config) Validate() error {
	if c.Address == 0 {
		return ErrAddressZero
	}
	if c.OTGIlim > otgIlimMask {
		return ErrIlimRange
	}
	if c.OTGVbyp > vbypMask {
		return ErrVbypRange
	}
	return nil
}

// Device is the charger block on an I2C bus. It implements Regmap.
type Device struct {
	i2c     drivers.I2C
	addr    uint16
	retries int

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

// New constructs a Device with supplied config.
func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	return &Device{i2c: i2c, addr: addr, retries: retries}
}

func (d *Device) Address() uint16 { return d.addr }

// ReadMode returns the CHG_CNFG_00 MODE field.
func (d *Device) ReadMode() (Mode, error) {
	v, err := d.ReadReg(regChgCnfg00)
	return Mode(v & modeMask), err
}

// ReadIntOK returns CHG_INT_OK.
func (d *Device) ReadIntOK() (IntOK, error) {
	v, err := d.ReadReg(regChgIntOK)
	return IntOK(v), err
}
