package max77779

// Snapshot collects the power-path registers.
// Zero values remain where individual reads fail.
type Snapshot struct {
	Mode        Mode
	OTGIlim     uint8
	VbypCode    uint8
	InputSelect uint8
	IntOK       IntOK
	Details00   uint8
	Details01   uint8
}

// ChgInSelected and WcInSelected decode CHG_CNFG_12.
func (s Snapshot) ChgInSelected() bool { return s.InputSelect&cnfg12ChgInSel != 0 }
func (s Snapshot) WcInSelected() bool  { return s.InputSelect&cnfg12WcInSel != 0 }

func (d *Device) Snapshot() Snapshot {
	var s Snapshot
	d.SnapshotInto(&s)
	return s
}

func (d *Device) SnapshotInto(out *Snapshot) {
	var s Snapshot
	if v, e := d.ReadMode(); e == nil {
		s.Mode = v
	}
	if v, e := d.ReadReg(regChgCnfg05); e == nil {
		s.OTGIlim = v & otgIlimMask
	}
	if v, e := d.ReadReg(regChgCnfg11); e == nil {
		s.VbypCode = v & vbypMask
	}
	if v, e := d.ReadReg(regChgCnfg12); e == nil {
		s.InputSelect = v
	}
	if v, e := d.ReadIntOK(); e == nil {
		s.IntOK = v
	}
	if v, e := d.ReadReg(regChgDetails00); e == nil {
		s.Details00 = v
	}
	if v, e := d.ReadReg(regChgDetails01); e == nil {
		s.Details01 = v
	}
	*out = s
}
