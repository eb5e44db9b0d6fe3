// Package periphio backs the HAL pin factory with periph.io on a Linux host.
// Pins are addressed by their gpioreg number; host.Init must have run first.
package periphio

import (
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"chargepath-go/services/hal"
)

var (
	_ hal.PinFactory   = Pins{}
	_ hal.OutputDriver = (*Pin)(nil)
)

type Pins struct {
	byName func(string) gpio.PinIO
}

func New() Pins { return Pins{byName: gpioreg.ByName} }

func (p Pins) ByNumber(n int) (hal.GPIOPin, bool) {
	io := p.byName(strconv.Itoa(n))
	if io == nil {
		return nil, false
	}
	return &Pin{io: io, n: n}, true
}

// Pin adapts a periph gpio.PinIO to hal.GPIOPin.
type Pin struct {
	io gpio.PinIO
	n  int
}

func (p *Pin) ConfigureInput(pull hal.Pull) error {
	return p.io.In(pullOf(pull), gpio.NoEdge)
}

func (p *Pin) ConfigureOutput(initial bool) error {
	return p.io.Out(gpio.Level(initial))
}

// Drive sets the output level and reports a failed write.
func (p *Pin) Drive(level bool) error {
	return p.io.Out(gpio.Level(level))
}

func (p *Pin) Set(level bool) {
	if err := p.Drive(level); err != nil {
		println("[hal] gpio", p.n, "set failed:", err.Error())
	}
}

func (p *Pin) Get() bool   { return p.io.Read() == gpio.High }
func (p *Pin) Toggle()     { p.Set(!p.Get()) }
func (p *Pin) Number() int { return p.n }

func pullOf(p hal.Pull) gpio.Pull {
	switch p {
	case hal.PullUp:
		return gpio.PullUp
	case hal.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}
