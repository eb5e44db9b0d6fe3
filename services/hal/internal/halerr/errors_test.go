package halerr

import "testing"

func TestErrorsAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"busy":                       ErrBusy,
		"unknown_capability":         ErrUnknownCap,
		"invalid_payload":            ErrBadPayload,
		"unknown_use_case":           ErrUnknownMode,
		"missing_bus_ref":            ErrMissingBusRef,
		"unknown_bus":                ErrUnknownBus,
		"unknown_pin":                ErrUnknownPin,
		"invalid_params":             ErrInvalidParams,
		"unsupported":                ErrUnsupported,
		"invalid_period":             ErrInvalidRate,
		"no_adaptor":                 ErrNoAdaptor,
		"unknown_device_type":        ErrUnknownType,
		"invalid_capability_address": ErrInvalidCap,
	}
	for want, e := range cases {
		if e == nil || e.Error() != want {
			t.Fatalf("error %q mismatch: got %#v", want, e)
		}
	}
}
