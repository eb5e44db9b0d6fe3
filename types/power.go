package types

import "golang.org/x/exp/constraints"

// ------------------------
// Charger power path (max77779)
// ------------------------

type ChargerInfo struct {
	Model     string   `json:"model"`
	Bus       string   `json:"bus"`
	Addr      uint16   `json:"addr"`
	UseCases  []string `json:"use_cases"`
	WlcEnPin  int      `json:"wlc_en_pin"` // -1 when absent
	RtxEnPin  int      `json:"rtx_en_pin"` // -1 when absent
	RxToRxOTG bool     `json:"rx_to_rx_otg"`
}

// Retained value: hal/cap/charger/<id>/value
type ChargerValue struct {
	UseCase   string   `json:"use_case"`
	Mode      string   `json:"mode"`
	ModeRaw   uint8    `json:"mode_raw"`
	OTGIlimMA int32    `json:"otg_ilim_mA"`
	Vbyp      uint8    `json:"vbyp"`
	InputSel  uint8    `json:"input_sel"`  // raw CHG_CNFG_12
	IntOK     uint8    `json:"int_ok"`     // raw CHG_INT_OK
	Details00 uint8    `json:"details_00"` // raw CHG_DETAILS_00
	Details01 uint8    `json:"details_01"` // raw CHG_DETAILS_01
	Flags     []string `json:"flags,omitempty"`
	TS        int64    `json:"ts_ms"`
}

// Controls
type SetUseCase struct {
	UseCase string `json:"use_case"` // verb: "set_use_case"
}
type WriteRawMode struct {
	Mode uint8 `json:"mode"` // verb: "write_raw_mode"
}

// SetUseCaseReply reports where the machine ended up. Plan is the edge kind
// that was taken ("direct", "via_standby", "noop", "unsupported").
type SetUseCaseReply struct {
	OK      bool   `json:"ok"`
	UseCase string `json:"use_case"`
	Plan    string `json:"plan"`
}

// CHG_INT_OK (0xB2)
type ChargerIntOK uint8

const (
	AiclOK  ChargerIntOK = 1 << 7
	ChgInOK ChargerIntOK = 1 << 6
	WcInOK  ChargerIntOK = 1 << 5
	ChgOK   ChargerIntOK = 1 << 4
	BatOK   ChargerIntOK = 1 << 3
	IlimOK  ChargerIntOK = 1 << 2
	ThmOK   ChargerIntOK = 1 << 1
	BypOK   ChargerIntOK = 1 << 0
)

// Generic pairing of a bit value with a printable name.
type BitName[T constraints.Unsigned] struct {
	Bit  T
	Name string
}

// BitIter is a zero-alloc iterator over set bits in a value, filtered by a table.
// Caller advances with Next(); no callbacks, no closures.
type BitIter[T constraints.Unsigned] struct {
	v     uint64
	i     int
	table []BitName[T]
}

// NewBitIter constructs an iterator over set bits present in v that also exist in table.
func NewBitIter[T constraints.Unsigned](v T, table []BitName[T]) BitIter[T] {
	return BitIter[T]{v: uint64(v), i: 0, table: table}
}

// Next returns the next SET bit: (name, ok). ok=false when done.
func (it *BitIter[T]) Next() (string, bool) {
	for it.i < len(it.table) {
		e := it.table[it.i]
		it.i++
		if (it.v & uint64(e.Bit)) != 0 {
			return e.Name, true
		}
	}
	return "", false
}

// Reset allows reusing the iterator.
func (it *BitIter[T]) Reset() { it.i = 0 }

// Names collects every set bit name.
func (it *BitIter[T]) Names() []string {
	var out []string
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		out = append(out, n)
	}
	return out
}

// ChargerIntOK display (ordering is cosmetic).
var ChargerIntOKTable = [...]BitName[ChargerIntOK]{
	{ChgInOK, "chgin_ok"},
	{WcInOK, "wcin_ok"},
	{ChgOK, "chg_ok"},
	{BatOK, "bat_ok"},
	{IlimOK, "ilim_ok"},
	{ThmOK, "thm_ok"},
	{BypOK, "byp_ok"},
	{AiclOK, "aicl_ok"},
}
