// services/hal/internal/devices/max77779/pins.go
package max77779adpt

import (
	"chargepath-go/services/hal/internal/halcore"
	"chargepath-go/services/hal/internal/halerr"
)

// pinPort adapts a PinFactory to the charger's GPIO port. Lines are
// configured as outputs the first time they are driven.
type pinPort struct {
	pins halcore.PinFactory
	out  map[int]halcore.GPIOPin
}

func newPinPort(pins halcore.PinFactory) *pinPort {
	return &pinPort{pins: pins, out: make(map[int]halcore.GPIOPin, 2)}
}

func (p *pinPort) SetLevel(n int, on bool) error {
	if pin, ok := p.out[n]; ok {
		if d, ok := pin.(halcore.OutputDriver); ok {
			return d.Drive(on)
		}
		pin.Set(on)
		return nil
	}
	pin, ok := p.pins.ByNumber(n)
	if !ok {
		return halerr.ErrUnknownPin
	}
	if err := pin.ConfigureOutput(on); err != nil {
		return err
	}
	p.out[n] = pin
	return nil
}
