// Package hal is the host-facing entry point of the hardware abstraction
// layer. It builds devices from "config/hal" on the bus, samples them and
// serves their control verbs.
package hal

import (
	"context"

	"chargepath-go/bus"
	_ "chargepath-go/services/hal/internal/devices/max77779"
	"chargepath-go/services/hal/internal/halcore"
	"chargepath-go/services/hal/internal/service"
)

type (
	I2CBusFactory = halcore.I2CBusFactory
	PinFactory    = halcore.PinFactory
	GPIOPin       = halcore.GPIOPin
	OutputDriver  = halcore.OutputDriver
	Pull          = halcore.Pull
)

const (
	PullNone = halcore.PullNone
	PullUp   = halcore.PullUp
	PullDown = halcore.PullDown
)

// Run serves until ctx is cancelled.
func Run(ctx context.Context, conn *bus.Connection, buses I2CBusFactory, pins PinFactory) {
	service.New(conn, buses, pins).Run(ctx)
}

// ConfigTopic is where a HALConfig is published.
func ConfigTopic() bus.Topic { return bus.T("config", "hal") }

// StateTopic carries the retained HAL state.
func StateTopic() bus.Topic { return bus.T("hal", "state") }

// CapTopic is hal/cap/<kind>/<id>/<suffix...>.
func CapTopic(kind string, id int, suffix ...any) bus.Topic {
	return service.CapTopic(kind, id, suffix...)
}
