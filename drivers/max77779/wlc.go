package max77779

import "chargepath-go/errcode"

func (m *Machine) setGPIO(n int, on bool) error {
	if n < 0 || m.gpio == nil {
		return nil
	}
	return m.gpio.SetLevel(n, on)
}

// enableTx turns the coil around: wireless receive off, WCIN deselected,
// reverse transmit on.
func (m *Machine) enableTx() error {
	if err := m.setGPIO(m.data.WlcEnGPIO, false); err != nil {
		return err
	}
	if err := m.regs.UpdateReg(regChgCnfg12, cnfg12WcInSel, 0); err != nil {
		return err
	}
	return m.setGPIO(m.data.RtxEnGPIO, true)
}

// disableTx undoes enableTx in reverse order.
func (m *Machine) disableTx() error {
	if err := m.setGPIO(m.data.RtxEnGPIO, false); err != nil {
		return err
	}
	if err := m.regs.UpdateReg(regChgCnfg12, cnfg12WcInSel, cnfg12WcInSel); err != nil {
		return err
	}
	return m.setGPIO(m.data.WlcEnGPIO, true)
}

// disableTxBestEffort is disableTx on the way to STANDBY: every step is
// attempted and failures are only logged.
func (m *Machine) disableTxBestEffort() {
	if err := m.setGPIO(m.data.RtxEnGPIO, false); err != nil {
		m.log("rtx disable failed", errcode.Wrap(errcode.NonCriticalHardware, "max77779.standby", err))
	}
	if err := m.regs.UpdateReg(regChgCnfg12, cnfg12WcInSel, cnfg12WcInSel); err != nil {
		m.log("wcin reselect failed", errcode.Wrap(errcode.NonCriticalHardware, "max77779.standby", err))
	}
	if err := m.setGPIO(m.data.WlcEnGPIO, true); err != nil {
		m.log("wlc_en restore failed", errcode.Wrap(errcode.NonCriticalHardware, "max77779.standby", err))
	}
}
