// services/hal/internal/halerr/errors.go
package halerr

import "errors"

var (
	// Service/control plane
	ErrBusy        = errors.New("busy")
	ErrUnknownCap  = errors.New("unknown_capability")
	ErrBadPayload  = errors.New("invalid_payload")
	ErrUnknownMode = errors.New("unknown_use_case")
	ErrInvalidCap  = errors.New("invalid_capability_address")
	ErrInvalidRate = errors.New("invalid_period")
	ErrNoAdaptor   = errors.New("no_adaptor")

	// Build/config
	ErrMissingBusRef = errors.New("missing_bus_ref")
	ErrUnknownBus    = errors.New("unknown_bus")
	ErrUnknownPin    = errors.New("unknown_pin")
	ErrInvalidParams = errors.New("invalid_params")
	ErrUnknownType   = errors.New("unknown_device_type")

	// Generic / pass-through
	ErrUnsupported = errors.New("unsupported")
)
