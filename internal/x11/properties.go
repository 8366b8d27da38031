package x11

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrNoProperty is returned when an output lacks the requested property.
var ErrNoProperty = errors.New("output property not present")

// ErrBadEDID is returned when an EDID blob fails the header check.
var ErrBadEDID = errors.New("malformed EDID")

var edidHeader = []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// backlightAtoms are tried in order; drivers disagree on the name.
var backlightAtoms = []string{"Backlight", "BACKLIGHT"}

// OutputProperty reads the raw bytes of a named output property.
func (c *Connection) OutputProperty(o randr.Output, name string) ([]byte, error) {
	atom, err := c.Atom(name)
	if err != nil {
		return nil, err
	}
	if atom == xproto.AtomNone {
		return nil, fmt.Errorf("%s: %w", name, ErrNoProperty)
	}
	reply, err := randr.GetOutputProperty(c.XUtil.Conn(), o, atom, xproto.AtomAny, 0, 256, false, false).Reply()
	if err != nil {
		return nil, err
	}
	if reply.Type == xproto.AtomNone || len(reply.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoProperty)
	}
	return reply.Data, nil
}

// EDID returns the EDID blob of an output.
func (c *Connection) EDID(o randr.Output) ([]byte, error) {
	return c.OutputProperty(o, "EDID")
}

// EDIDVendor extracts the 16-bit PNP manufacturer id from an EDID blob.
func EDIDVendor(edid []byte) (uint16, error) {
	if len(edid) < 128 || !bytes.Equal(edid[:8], edidHeader) {
		return 0, ErrBadEDID
	}
	return binary.BigEndian.Uint16(edid[8:10]), nil
}

// EDIDVendorName decodes the three-letter manufacturer code.
func EDIDVendorName(id uint16) string {
	letters := []byte{
		byte('A' - 1 + (id>>10)&0x1f),
		byte('A' - 1 + (id>>5)&0x1f),
		byte('A' - 1 + id&0x1f),
	}
	return string(letters)
}

// Backlight is the backlight property of one output.
type Backlight struct {
	atom  xproto.Atom
	Value int32
	Min   int32
	Max   int32
}

// Level returns the backlight as a fraction of its range.
func (b Backlight) Level() float64 {
	if b.Max <= b.Min {
		return 0
	}
	return float64(b.Value-b.Min) / float64(b.Max-b.Min)
}

// Backlight reads the backlight property of an output.
func (c *Connection) Backlight(o randr.Output) (Backlight, error) {
	conn := c.XUtil.Conn()
	for _, name := range backlightAtoms {
		atom, err := c.Atom(name)
		if err != nil || atom == xproto.AtomNone {
			continue
		}
		prop, err := randr.GetOutputProperty(conn, o, atom, xproto.AtomInteger, 0, 4, false, false).Reply()
		if err != nil || prop.Format != 32 || len(prop.Data) < 4 {
			continue
		}
		b := Backlight{atom: atom, Value: int32(binary.LittleEndian.Uint32(prop.Data))}

		q, err := randr.QueryOutputProperty(conn, o, atom).Reply()
		if err != nil {
			return Backlight{}, err
		}
		if !q.Range || len(q.ValidValues) != 2 {
			return Backlight{}, fmt.Errorf("%s has no range: %w", name, ErrNoProperty)
		}
		b.Min, b.Max = q.ValidValues[0], q.ValidValues[1]
		return b, nil
	}
	return Backlight{}, fmt.Errorf("backlight: %w", ErrNoProperty)
}

// SetBacklight sets the backlight of an output to level in [0, 1].
func (c *Connection) SetBacklight(o randr.Output, level float64) error {
	b, err := c.Backlight(o)
	if err != nil {
		return err
	}
	value := b.Min + int32(level*float64(b.Max-b.Min)+0.5)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(value))
	return randr.ChangeOutputPropertyChecked(c.XUtil.Conn(), o, b.atom, xproto.AtomInteger,
		32, xproto.PropModeReplace, 1, buf).Check()
}
