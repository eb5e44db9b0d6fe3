package max77779

// EdgeKind classifies how the machine reaches one use case from another.
type EdgeKind uint8

const (
	ViaStandby  EdgeKind = iota // take the STANDBY checkpoint, then enter
	Direct                      // run the edge actions in place
	Noop                        // already there, nothing to do
	Unsupported                 // platform lacks the capability; left as is
)

func (k EdgeKind) String() string {
	switch k {
	case ViaStandby:
		return "via_standby"
	case Direct:
		return "direct"
	case Noop:
		return "noop"
	case Unsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// action is one hardware step of a direct edge.
type action uint8

const (
	actEnableTx  action = iota + 1 // WLC RX off, WCIN deselected, RTX on
	actDisableTx                   // RTX off, WCIN selected, WLC RX on
	actEnterOTG                    // capture/raise ilim, VBYP, MODE=OTG
	actExitOTG                     // restore ilim, settle, MODE=target's mode
	actEnableRx                    // WLC RX on
)

// edge is one entry of the transition table.
type edge struct {
	kind      EdgeKind
	actions   []action
	needsRxRx bool // only direct when Config.RxToRxOTG is set
}

type edgeKey struct{ from, to UseCase }

// directEdges are the hardware-specific carve-outs from "always via STANDBY".
// Every pair not listed here goes through STANDBY.
var directEdges = map[edgeKey]edge{
	{USBCharge, USBChargeWlcTx}: {kind: Direct, actions: []action{actEnableTx}},
	{USBCharge, WlcRx}:          {kind: Direct},
	{USBCharge, USBDC}:          {kind: Direct},

	{WlcRx, USBOTGWlcRx}: {kind: Direct, actions: []action{actEnterOTG}},
	{WlcRx, WlcDC}:       {kind: Direct},

	{WlcTx, USBOTGWlcTx}:    {kind: Direct, actions: []action{actEnterOTG}},
	{WlcTx, USBChargeWlcTx}: {kind: Direct},

	{USBChargeWlcTx, USBCharge}:   {kind: Direct, actions: []action{actDisableTx}},
	{USBChargeWlcTx, USBOTGWlcTx}: {kind: Direct, actions: []action{actEnterOTG}},
	{USBChargeWlcTx, USBDC}:       {kind: Direct, actions: []action{actDisableTx}},

	{USBOTG, USBOTGWlcTx}: {kind: Direct, actions: []action{actEnableTx}},
	{USBOTG, USBOTGWlcRx}: {kind: Direct, actions: []action{actEnableRx}, needsRxRx: true},

	{USBOTGWlcRx, WlcRx}:  {kind: Direct, actions: []action{actExitOTG}},
	{USBOTGWlcRx, USBOTG}: {kind: Direct},

	{USBOTGWlcTx, USBOTG}:         {kind: Direct, actions: []action{actDisableTx}},
	{USBOTGWlcTx, USBChargeWlcTx}: {kind: Direct, actions: []action{actExitOTG}},

	{USBDC, USBDC}: {kind: Noop},
	{WlcDC, WlcDC}: {kind: Noop},
}

// forcedStandby targets assume nothing about the hardware they start from.
func forcedStandby(to UseCase) bool {
	switch to {
	case Standby, USBWlcRx, RawMode:
		return true
	default:
		return false
	}
}

// lookup returns the table entry for (from, to) without applying platform
// capabilities.
func lookup(from, to UseCase) edge {
	if forcedStandby(to) || from == RawMode {
		return edge{kind: ViaStandby}
	}
	if e, ok := directEdges[edgeKey{from, to}]; ok {
		return e
	}
	return edge{kind: ViaStandby}
}

// NeedsStandby reports whether (from, to) must pass through STANDBY. It is a
// pure function of the pair.
func NeedsStandby(from, to UseCase) bool {
	return lookup(from, to).kind == ViaStandby
}

// planEdge applies the platform capability flag on top of the table.
func planEdge(from, to UseCase, rxToRxOTG bool) edge {
	e := lookup(from, to)
	if e.needsRxRx && !rxToRxOTG {
		return edge{kind: Unsupported}
	}
	return e
}
