package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrConfigFailed is returned when the server rejects a CRTC configuration.
var ErrConfigFailed = errors.New("randr configuration failed")

// Rotation bits of a CRTC.
const (
	Rotate0   = randr.RotationRotate0
	Rotate90  = randr.RotationRotate90
	Rotate180 = randr.RotationRotate180
	Rotate270 = randr.RotationRotate270
	rotateAll = Rotate0 | Rotate90 | Rotate180 | Rotate270
)

// ModeInfo describes one RandR mode.
type ModeInfo struct {
	ID          randr.Mode
	Name        string
	Width       int
	Height      int
	RefreshRate float64
	Interlaced  bool
}

// ModeTable indexes the modes of a screen resources reply by id.
func ModeTable(res *randr.GetScreenResourcesCurrentReply) map[randr.Mode]ModeInfo {
	table := make(map[randr.Mode]ModeInfo, len(res.Modes))
	names := res.Names
	for _, m := range res.Modes {
		name := ""
		if int(m.NameLen) <= len(names) {
			name = string(names[:m.NameLen])
			names = names[m.NameLen:]
		}
		table[randr.Mode(m.Id)] = ModeInfo{
			ID:          randr.Mode(m.Id),
			Name:        name,
			Width:       int(m.Width),
			Height:      int(m.Height),
			RefreshRate: refreshRate(m),
			Interlaced:  m.ModeFlags&randr.ModeFlagInterlace != 0,
		}
	}
	return table
}

func refreshRate(m randr.ModeInfo) float64 {
	vtotal := float64(m.Vtotal)
	if m.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		vtotal *= 2
	}
	if m.ModeFlags&randr.ModeFlagInterlace != 0 {
		vtotal /= 2
	}
	if m.Htotal == 0 || vtotal == 0 {
		return 0
	}
	return float64(m.DotClock) / (float64(m.Htotal) * vtotal)
}

// OutputModes lists the modes an output supports in server order. The first
// o.Preferred entries are the output's preferred modes.
func (c *Connection) OutputModes(o Output) ([]ModeInfo, error) {
	res, err := c.Resources()
	if err != nil {
		return nil, err
	}
	table := ModeTable(res)
	modes := make([]ModeInfo, 0, len(o.Modes))
	for _, id := range o.Modes {
		if m, ok := table[id]; ok {
			modes = append(modes, m)
		}
	}
	return modes, nil
}

// SetMode drives the output's CRTC with mode, keeping position and rotation.
func (c *Connection) SetMode(o Output, mode randr.Mode) error {
	if o.Crtc == 0 {
		return fmt.Errorf("output %s has no crtc: %w", o.Name, ErrConfigFailed)
	}
	return c.configureCrtc(o, o.X, o.Y, mode, o.Rotation)
}

// SetRotation changes the rotation of the output's CRTC.
func (c *Connection) SetRotation(o Output, rotation uint16) error {
	if o.Crtc == 0 {
		return fmt.Errorf("output %s has no crtc: %w", o.Name, ErrConfigFailed)
	}
	if o.Rotations&rotation == 0 {
		return fmt.Errorf("output %s does not support rotation %#x: %w", o.Name, rotation, ErrConfigFailed)
	}
	return c.configureCrtc(o, o.X, o.Y, o.Mode, rotation)
}

// CanRotate reports whether the CRTC supports any rotation other than 0.
func (o Output) CanRotate() bool {
	return o.Rotations&(Rotate90|Rotate180|Rotate270) != 0
}

// RotationDegrees converts a rotation bitmask to degrees.
func RotationDegrees(rotation uint16) int {
	switch rotation & rotateAll {
	case Rotate90:
		return 90
	case Rotate180:
		return 180
	case Rotate270:
		return 270
	default:
		return 0
	}
}

// RotationFromDegrees converts a multiple of 90 degrees to a rotation bit.
func RotationFromDegrees(deg int) (uint16, bool) {
	switch ((deg % 360) + 360) % 360 {
	case 0:
		return Rotate0, true
	case 90:
		return Rotate90, true
	case 180:
		return Rotate180, true
	case 270:
		return Rotate270, true
	}
	return 0, false
}

func (c *Connection) configureCrtc(o Output, x, y int, mode randr.Mode, rotation uint16) error {
	c.configMu.Lock()
	defer c.configMu.Unlock()
	return c.setCrtcLocked(o.Crtc, []randr.Output{o.ID}, x, y, mode, rotation)
}

// setCrtcLocked applies one CRTC configuration, growing the screen first when
// the new geometry does not fit. configMu must be held.
func (c *Connection) setCrtcLocked(crtc randr.Crtc, outputs []randr.Output, x, y int, mode randr.Mode, rotation uint16) error {
	res, err := c.Resources()
	if err != nil {
		return err
	}
	if mode != 0 {
		m, ok := ModeTable(res)[mode]
		if !ok {
			return fmt.Errorf("mode %d unknown: %w", mode, ErrConfigFailed)
		}
		w, h := m.Width, m.Height
		if rotation&(Rotate90|Rotate270) != 0 {
			w, h = h, w
		}
		if err := c.growScreenLocked(x+w, y+h); err != nil {
			return err
		}
	}

	reply, err := randr.SetCrtcConfig(c.XUtil.Conn(), crtc, xproto.TimeCurrentTime, res.ConfigTimestamp,
		int16(x), int16(y), mode, rotation, outputs).Reply()
	if err != nil {
		return err
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("set crtc %d status %d: %w", crtc, reply.Status, ErrConfigFailed)
	}
	return nil
}

func (c *Connection) growScreenLocked(width, height int) error {
	conn := c.XUtil.Conn()
	screen := xproto.Setup(conn).DefaultScreen(conn)
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return err
	}
	curW, curH := int(geom.Width), int(geom.Height)
	if width <= curW && height <= curH {
		return nil
	}
	newW, newH := max(width, curW), max(height, curH)

	// Keep the physical DPI of the current screen.
	mmW := uint32(float64(screen.WidthInMillimeters) * float64(newW) / float64(max(curW, 1)))
	mmH := uint32(float64(screen.HeightInMillimeters) * float64(newH) / float64(max(curH, 1)))
	return randr.SetScreenSizeChecked(conn, c.Root, uint16(newW), uint16(newH), mmW, mmH).Check()
}
