package max77779

import "periph.io/x/conn/v3/physic"

// OTG_ILIM: 500 mA + code*100 mA, code 0..15.
const (
	ilimBase        = 500 * physic.MilliAmpere
	ilimStep        = 100 * physic.MilliAmpere
	ilimDefaultCode = 5 // 1000 mA
)

// IlimCode maps a current limit onto the CHG_CNFG_05 OTG_ILIM code, rounding
// down to the step.
func IlimCode(c physic.ElectricCurrent) (uint8, error) {
	if c < ilimBase || c > IlimCurrent(otgIlimMask) {
		return 0, ErrIlimRange
	}
	return uint8((c - ilimBase) / ilimStep), nil
}

// IlimCurrent is the inverse of IlimCode.
func IlimCurrent(code uint8) physic.ElectricCurrent {
	return ilimBase + physic.ElectricCurrent(code&otgIlimMask)*ilimStep
}

// enterOTG raises the current limit and switches MODE to OTG boost. The
// pre-OTG limit is read from hardware once per machine lifetime.
func (m *Machine) enterOTG() error {
	if !m.data.otgIlimCaptured {
		v, err := m.regs.ReadReg(regChgCnfg05)
		if err != nil {
			return err
		}
		m.data.otgIlimOriginal = v & otgIlimMask
		m.data.otgIlimCaptured = true
	}
	if err := m.regs.UpdateReg(regChgCnfg05, otgIlimMask, m.data.OTGIlimRequested); err != nil {
		return err
	}
	if m.data.OTGVbyp != 0 {
		if err := m.regs.UpdateReg(regChgCnfg11, vbypMask, m.data.OTGVbyp); err != nil {
			return err
		}
	}
	return m.writeMode(ModeOTGBoostOn)
}

// restoreIlim puts back the pre-OTG limit and waits for the boost to settle.
// It must run before MODE leaves the OTG code.
func (m *Machine) restoreIlim() error {
	if !m.data.otgIlimCaptured {
		return nil
	}
	if err := m.regs.UpdateReg(regChgCnfg05, otgIlimMask, m.data.otgIlimOriginal); err != nil {
		return err
	}
	m.sleep(m.settle)
	return nil
}

// exitOTG leaves OTG on a direct edge, landing on target's MODE code.
func (m *Machine) exitOTG(target UseCase) error {
	if err := m.restoreIlim(); err != nil {
		return err
	}
	return m.writeMode(target.mode())
}
