package max77779

// I2C 8-bit register operations with bounded retry.

func (d *Device) ReadReg(reg uint8) (uint8, error) {
	d.w[0] = reg
	var err error
	for i := 0; i < d.retries; i++ {
		if err = d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err == nil {
			return d.r[0], nil
		}
	}
	return 0, err
}

func (d *Device) WriteReg(reg, val uint8) error {
	d.w[0] = reg
	d.w[1] = val
	var err error
	for i := 0; i < d.retries; i++ {
		if err = d.i2c.Tx(d.addr, d.w[:2], nil); err == nil {
			return nil
		}
	}
	return err
}

// UpdateReg is a read-modify-write of the bits in mask. The write is skipped
// when the field already holds val.
func (d *Device) UpdateReg(reg, mask, val uint8) error {
	cur, err := d.ReadReg(reg)
	if err != nil {
		return err
	}
	next := (cur &^ mask) | (val & mask)
	if next == cur {
		return nil
	}
	return d.WriteReg(reg, next)
}
