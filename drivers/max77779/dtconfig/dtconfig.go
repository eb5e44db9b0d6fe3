// Package dtconfig reads MAX77779 charger platform data from a flattened
// device tree (DTB).
//
// The charger node is the one whose compatible list contains
// "maxim,max77779chrg":
//
//	charger@69 {
//		compatible = "maxim,max77779chrg";
//		reg = <0x69>;
//		max77779,wlc-en = <&gpa6 3 0>;
//		max77779,rtx-en = <&gpa6 4 0>;
//		max77779,rx-to-rx-otg-en;
//		max77779,otg-ilim-ma = <1500>;
//		max77779,otg-vbyp = <0x21>;
//	};
package dtconfig

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/u-root/u-root/pkg/dt"
	"periph.io/x/conn/v3/physic"

	"chargepath-go/drivers/max77779"
)

const Compatible = "maxim,max77779chrg"

const (
	propReg       = "reg"
	propWlcEn     = "max77779,wlc-en"
	propRtxEn     = "max77779,rtx-en"
	propRxToRxOTG = "max77779,rx-to-rx-otg-en"
	propOTGIlimMA = "max77779,otg-ilim-ma"
	propOTGVbyp   = "max77779,otg-vbyp"
)

var (
	ErrNodeNotFound = errors.New("max77779 charger node not found")
	ErrGPIOSpec     = errors.New("gpio specifier must be <phandle pin flags>")
)

// Load parses a DTB and returns the charger configuration.
func Load(r io.Reader) (max77779.Config, error) {
	fdt, err := dt.ReadFDT(r)
	if err != nil {
		return max77779.Config{}, err
	}
	nodes, err := fdt.Root().FindAll(IsCharger)
	if err != nil {
		return max77779.Config{}, err
	}
	if len(nodes) == 0 {
		return max77779.Config{}, ErrNodeNotFound
	}
	return FromNode(nodes[0])
}

// IsCharger reports whether n is a MAX77779 charger node.
func IsCharger(n *dt.Node) bool {
	p, ok := n.LookProperty("compatible")
	if !ok {
		return false
	}
	// compatible is a NUL-separated string list.
	for _, c := range bytes.Split(p.Value, []byte{0}) {
		if string(c) == Compatible {
			return true
		}
	}
	return false
}

// FromNode builds a validated Config from the charger node. Absent GPIO
// properties leave the line as max77779.NoGPIO.
func FromNode(n *dt.Node) (max77779.Config, error) {
	cfg := max77779.DefaultConfig()

	if p, ok := n.LookProperty(propReg); ok {
		v, err := p.AsU32()
		if err != nil {
			return cfg, err
		}
		cfg.Address = uint16(v)
	}

	var err error
	if cfg.WlcEnGPIO, err = gpioLine(n, propWlcEn); err != nil {
		return cfg, err
	}
	if cfg.RtxEnGPIO, err = gpioLine(n, propRtxEn); err != nil {
		return cfg, err
	}

	_, cfg.RxToRxOTG = n.LookProperty(propRxToRxOTG)

	if p, ok := n.LookProperty(propOTGIlimMA); ok {
		v, err := p.AsU32()
		if err != nil {
			return cfg, err
		}
		code, err := max77779.IlimCode(physic.ElectricCurrent(v) * physic.MilliAmpere)
		if err != nil {
			return cfg, err
		}
		cfg.OTGIlim = code
	}

	if p, ok := n.LookProperty(propOTGVbyp); ok {
		v, err := p.AsU32()
		if err != nil {
			return cfg, err
		}
		if v > 0xFF {
			return cfg, max77779.ErrVbypRange
		}
		cfg.OTGVbyp = uint8(v)
	}

	return cfg, cfg.Validate()
}

// gpioLine returns the pin cell of a single GPIO specifier.
func gpioLine(n *dt.Node, name string) (int, error) {
	p, ok := n.LookProperty(name)
	if !ok {
		return max77779.NoGPIO, nil
	}
	blk, err := p.AsPropEncodedArray()
	if err != nil {
		return max77779.NoGPIO, err
	}
	if len(blk) != 12 {
		return max77779.NoGPIO, ErrGPIOSpec
	}
	return int(binary.BigEndian.Uint32(blk[4:])), nil
}
