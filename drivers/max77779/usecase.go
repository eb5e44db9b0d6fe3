package max77779

// UseCase is one mutually exclusive power-path configuration.
type UseCase uint8

const (
	Standby        UseCase = iota // all outputs off; safe checkpoint
	USBCharge                     // buck from CHGIN
	USBDC                         // direct charging from USB
	USBChargeWlcTx                // buck from CHGIN while transmitting wirelessly
	WlcRx                         // buck from WCIN
	WlcDC                         // direct charging from wireless
	USBOTG                        // OTG boost out of CHGIN
	USBOTGWlcRx                   // OTG boost while receiving wirelessly
	USBOTGWlcTx                   // OTG boost while transmitting wirelessly
	WlcTx                         // reverse wireless transmit
	USBWlcRx                      // both inputs present
	RawMode                       // caller drives MODE directly

	numUseCases
)

var useCaseNames = [numUseCases]string{
	Standby:        "standby",
	USBCharge:      "usb_charge",
	USBDC:          "usb_dc",
	USBChargeWlcTx: "usb_charge_wlc_tx",
	WlcRx:          "wlc_rx",
	WlcDC:          "wlc_dc",
	USBOTG:         "usb_otg",
	USBOTGWlcRx:    "usb_otg_wlc_rx",
	USBOTGWlcTx:    "usb_otg_wlc_tx",
	WlcTx:          "wlc_tx",
	USBWlcRx:       "usb_wlc_rx",
	RawMode:        "raw_mode",
}

func (u UseCase) Valid() bool { return u < numUseCases }

func (u UseCase) String() string {
	if !u.Valid() {
		return "invalid"
	}
	return useCaseNames[u]
}

// ParseUseCase is the inverse of String.
func ParseUseCase(s string) (UseCase, bool) {
	for i, n := range useCaseNames {
		if n == s {
			return UseCase(i), true
		}
	}
	return 0, false
}

// UseCases lists every use case in enum order.
func UseCases() []UseCase {
	out := make([]UseCase, numUseCases)
	for i := range out {
		out[i] = UseCase(i)
	}
	return out
}

// IsOTG reports whether the boost converter sources power out of CHGIN.
func (u UseCase) IsOTG() bool {
	switch u {
	case USBOTG, USBOTGWlcRx, USBOTGWlcTx:
		return true
	default:
		return false
	}
}

// IsWlcTx reports whether reverse wireless transmit is active.
func (u UseCase) IsWlcTx() bool {
	switch u {
	case WlcTx, USBChargeWlcTx, USBOTGWlcTx:
		return true
	default:
		return false
	}
}

// mode is the MODE code the machine writes when it leaves OTG on a direct
// edge. Other entries are driven by the caller's own mode vote.
func (u UseCase) mode() Mode {
	switch u {
	case USBOTG, USBOTGWlcRx, USBOTGWlcTx:
		return ModeOTGBoostOn
	case USBCharge, USBChargeWlcTx, WlcRx, USBWlcRx:
		return ModeChgrBuckOn
	default:
		return ModeAllOff
	}
}
