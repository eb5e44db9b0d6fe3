// services/hal/internal/consts/consts.go
package consts

// Topic tokens
const (
	TokConfig     = "config"
	TokHAL        = "hal"
	TokCapability = "cap"
	TokInfo       = "info"
	TokState      = "state"
	TokValue      = "value"
	TokControl    = "control"
)

// Service-level control verbs; every other verb goes to the adaptor.
const (
	CtrlReadNow = "read_now"
	CtrlSetRate = "set_rate"
)

// Verbs that change hardware state and earn an immediate re-read.
const (
	CtrlSetUseCase   = "set_use_case"
	CtrlWriteRawMode = "write_raw_mode"
)

// Sampling period bounds (ms).
const (
	MinPeriodMS = 200
	MaxPeriodMS = 3_600_000
)
