package types

// ------------------------
// Common HAL state (retained)
// ------------------------

type HALState struct {
	Level  string `json:"level"`  // "idle", "ready", "error", "stopped"
	Status string `json:"status"` // short code
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// Link is the link/state reported for a capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type CapabilityState struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"`
}

// ------------------------
// HAL configuration, supplied on topic "config/hal"
// ------------------------

type HALConfig struct {
	Devices []Device `json:"devices"`
}

type Device struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Params any    `json:"params,omitempty"`
	BusRef BusRef `json:"bus_ref,omitempty"`
}

type BusRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ------------------------
// Service-level controls
// ------------------------

type ReadNowAck struct {
	OK bool `json:"ok"`
}

type SetRate struct {
	PeriodMS int `json:"period_ms"` // verb: "set_rate"
}

type SetRateAck struct {
	OK       bool `json:"ok"`
	PeriodMS int  `json:"period_ms"`
}
