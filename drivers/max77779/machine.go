package max77779

import (
	"time"

	"chargepath-go/errcode"
)

// LogFunc receives driver diagnostics. err may be nil.
type LogFunc func(msg string, err error)

func printlnLog(msg string, err error) {
	if err != nil {
		println("[max77779]", msg, err.Error())
		return
	}
	println("[max77779]", msg)
}

const defaultSettle = 100 * time.Millisecond

// UseCaseData is the persistent context of one charger's power path.
type UseCaseData struct {
	current UseCase

	OTGIlimRequested uint8 // CHG_CNFG_05 code applied on OTG entry
	otgIlimOriginal  uint8 // hardware value before the first OTG entry
	otgIlimCaptured  bool

	OTGVbyp uint8 // 0 leaves VBYPSET untouched

	WlcEnGPIO int
	RtxEnGPIO int
	RxToRxOTG bool

	initDone bool
}

// Current returns the use case the hardware is configured for.
func (d UseCaseData) Current() UseCase { return d.current }

// OTGIlimOriginal returns the cached pre-OTG ilim code, if captured yet.
func (d UseCaseData) OTGIlimOriginal() (uint8, bool) {
	return d.otgIlimOriginal, d.otgIlimCaptured
}

// InitDone reports whether first-use discovery has run.
func (d UseCaseData) InitDone() bool { return d.initDone }

// Machine moves the charger between use cases. It performs no locking; one
// TransitionTo call must own the Regmap and GPIO port until it returns.
type Machine struct {
	regs Regmap
	gpio GPIO
	data UseCaseData

	settle time.Duration
	sleep  func(time.Duration)
	log    LogFunc
}

// NewMachine binds a machine to its ports. A nil gpio means no lines are wired.
// cfg is expected to have passed Validate.
func NewMachine(regs Regmap, gpio GPIO, cfg Config) *Machine {
	m := &Machine{
		regs:   regs,
		gpio:   gpio,
		settle: cfg.Settle,
		sleep:  cfg.Sleep,
		log:    cfg.Log,
		data: UseCaseData{
			OTGIlimRequested: cfg.OTGIlim & otgIlimMask,
			OTGVbyp:          cfg.OTGVbyp & vbypMask,
			WlcEnGPIO:        cfg.WlcEnGPIO,
			RtxEnGPIO:        cfg.RtxEnGPIO,
			RxToRxOTG:        cfg.RxToRxOTG,
		},
	}
	if m.settle <= 0 {
		m.settle = defaultSettle
	}
	if m.sleep == nil {
		m.sleep = time.Sleep
	}
	if m.log == nil {
		m.log = printlnLog
	}
	if gpio == nil {
		m.data.WlcEnGPIO = NoGPIO
		m.data.RtxEnGPIO = NoGPIO
	}
	return m
}

// Current is a racy snapshot unless the caller holds the charger lock.
func (m *Machine) Current() UseCase { return m.data.current }

// Data returns a copy of the machine context.
func (m *Machine) Data() UseCaseData { return m.data }

// Init seeds the current use case from CHG_CNFG_00. An all-off MODE means
// STANDBY; anything else is treated as RAW_MODE so the next transition takes
// the STANDBY checkpoint.
func (m *Machine) Init() error {
	v, err := m.regs.ReadReg(regChgCnfg00)
	if err != nil {
		return errcode.Wrap(errcode.Hardware, "max77779.init", err)
	}
	if Mode(v & modeMask).Off() {
		m.data.current = Standby
	} else {
		m.data.current = RawMode
	}
	m.data.initDone = true
	return nil
}

// Plan reports how TransitionTo would reach target from the current use case.
func (m *Machine) Plan(target UseCase) EdgeKind {
	if !target.Valid() {
		return Unsupported
	}
	return planEdge(m.data.current, target, m.data.RxToRxOTG).kind
}

// TransitionTo reconfigures the power path for target.
//
// On a STANDBY edge a failure while reaching STANDBY leaves the current use
// case untouched; a failure while entering target leaves it at STANDBY. A
// direct edge that fails leaves the current use case untouched.
func (m *Machine) TransitionTo(target UseCase) error {
	if !target.Valid() {
		return &errcode.E{C: errcode.UnsupportedTransition, Op: "max77779.transition", Msg: "invalid use case"}
	}
	if !m.data.initDone {
		if err := m.Init(); err != nil {
			return err
		}
	}

	from := m.data.current
	e := planEdge(from, target, m.data.RxToRxOTG)
	switch e.kind {
	case Noop:
		return nil
	case Unsupported:
		m.log("unsupported transition "+from.String()+" -> "+target.String()+", ignored", nil)
		return nil
	case Direct:
		for _, a := range e.actions {
			if err := m.run(a, target); err != nil {
				return errcode.Wrap(errcode.Hardware, "max77779.direct", err)
			}
		}
		m.data.current = target
		return nil
	}

	// Already at the checkpoint; only forced targets rewrite ALL_OFF.
	if from != Standby || forcedStandby(target) {
		if err := m.goToStandby(from); err != nil {
			return err
		}
	}
	return m.enterUseCase(target)
}

// WriteRawMode takes the machine to RAW_MODE and writes mode directly. If the
// MODE write fails the hardware is still at ALL_OFF and current reverts to
// STANDBY.
func (m *Machine) WriteRawMode(mode Mode) error {
	if err := m.TransitionTo(RawMode); err != nil {
		return err
	}
	if err := m.writeMode(mode); err != nil {
		m.data.current = Standby
		return errcode.Wrap(errcode.Hardware, "max77779.raw", err)
	}
	return nil
}

// goToStandby reaches the all-off checkpoint from any use case.
func (m *Machine) goToStandby(from UseCase) error {
	if from.IsWlcTx() {
		m.disableTxBestEffort()
	}
	if from.IsOTG() {
		if err := m.restoreIlim(); err != nil {
			return errcode.Wrap(errcode.Hardware, "max77779.standby", err)
		}
	}
	if err := m.writeMode(ModeAllOff); err != nil {
		return errcode.Wrap(errcode.Hardware, "max77779.standby", err)
	}
	m.data.current = Standby
	return nil
}

// enterUseCase runs the entry side effects from STANDBY.
func (m *Machine) enterUseCase(target UseCase) error {
	var err error
	switch target {
	case USBOTG, USBOTGWlcRx:
		err = m.enterOTG()
	case USBOTGWlcTx:
		if err = m.enterOTG(); err == nil {
			err = m.enableTx()
		}
	case WlcTx, USBChargeWlcTx:
		err = m.enableTx()
	default:
		// USB/WLC sink states, RAW_MODE and USB_WLC_RX: bookkeeping only.
	}
	if err != nil {
		return errcode.Wrap(errcode.Hardware, "max77779.enter", err)
	}
	m.data.current = target
	return nil
}

func (m *Machine) run(a action, target UseCase) error {
	switch a {
	case actEnableTx:
		return m.enableTx()
	case actDisableTx:
		return m.disableTx()
	case actEnterOTG:
		return m.enterOTG()
	case actExitOTG:
		return m.exitOTG(target)
	case actEnableRx:
		return m.setGPIO(m.data.WlcEnGPIO, true)
	}
	return nil
}

func (m *Machine) writeMode(mode Mode) error {
	return m.regs.UpdateReg(regChgCnfg00, modeMask, uint8(mode))
}
