package max77779

// Register addresses and bitfields of the MAX77779 charger block.

const (
	// 7-bit I2C address of the charger block.
	AddressDefault = 0x69

	// --- Register sub-addresses (8-bit registers) ---

	// Status / details
	regChgIntOK     = 0xB2 // R
	regChgDetails00 = 0xB3 // R (CHGIN_DTLS[6:5], WCIN_DTLS[4:3])
	regChgDetails01 = 0xB4 // R (CHG_DTLS[3:0])

	// Config
	regChgCnfg00 = 0xBB // R/W MODE[3:0]
	regChgCnfg05 = 0xC0 // R/W OTG_ILIM[3:0]
	regChgCnfg11 = 0xC6 // R/W VBYPSET[6:0]
	regChgCnfg12 = 0xC7 // R/W CHGINSEL, WCINSEL

	// --- CHG_CNFG_00 ---
	modeMask = 0x0F

	// --- CHG_CNFG_05 ---
	otgIlimMask = 0x0F

	// --- CHG_CNFG_11 ---
	vbypMask = 0x7F

	// --- CHG_CNFG_12 ---
	cnfg12ChgInSel = 1 << 5
	cnfg12WcInSel  = 1 << 6
)

// Mode is the CHG_CNFG_00 MODE field.
type Mode uint8

const (
	ModeAllOff             Mode = 0x0
	ModeAllOffAlt          Mode = 0x1
	ModeBuckOn             Mode = 0x4
	ModeChgrBuckOn         Mode = 0x5
	ModeBoostUnoOn         Mode = 0x8
	ModeBoostOn            Mode = 0x9
	ModeOTGBoostOn         Mode = 0xA
	ModeBuckBoostUnoOn     Mode = 0xC
	ModeChgrBuckBoostUnoOn Mode = 0xD
	ModeOTGBuckBoostOn     Mode = 0xE
	ModeChgrOTGBuckBoostOn Mode = 0xF
)

// Off reports whether the mode disables every output.
func (m Mode) Off() bool { return m == ModeAllOff || m == ModeAllOffAlt }

func (m Mode) String() string {
	switch m {
	case ModeAllOff, ModeAllOffAlt:
		return "all_off"
	case ModeBuckOn:
		return "buck_on"
	case ModeChgrBuckOn:
		return "chgr_buck_on"
	case ModeBoostUnoOn:
		return "boost_uno_on"
	case ModeBoostOn:
		return "boost_on"
	case ModeOTGBoostOn:
		return "otg_boost_on"
	case ModeBuckBoostUnoOn:
		return "buck_boost_uno_on"
	case ModeChgrBuckBoostUnoOn:
		return "chgr_buck_boost_uno_on"
	case ModeOTGBuckBoostOn:
		return "otg_buck_boost_on"
	case ModeChgrOTGBuckBoostOn:
		return "chgr_otg_buck_boost_on"
	default:
		return "reserved"
	}
}

// IntOK is CHG_INT_OK (0xB2).
type IntOK uint8

const (
	IntOKAiclOK  IntOK = 1 << 7
	IntOKChgInOK IntOK = 1 << 6
	IntOKWcInOK  IntOK = 1 << 5
	IntOKChgOK   IntOK = 1 << 4
	IntOKBatOK   IntOK = 1 << 3
	IntOKIlimOK  IntOK = 1 << 2
	IntOKThmOK   IntOK = 1 << 1
	IntOKBypOK   IntOK = 1 << 0
)

func (b IntOK) Has(flag IntOK) bool { return b&flag != 0 }
