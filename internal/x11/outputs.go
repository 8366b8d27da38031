package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrNoOutput is returned for output ids the server does not know.
var ErrNoOutput = errors.New("no such output")

// builtinPrefixes identify internal panels by connector name.
var builtinPrefixes = []string{"eDP", "LVDS", "DSI"}

// Output is one RandR output together with the CRTC driving it.
type Output struct {
	ID        randr.Output
	Name      string
	Crtc      randr.Crtc
	Connected bool
	Primary   bool
	X         int
	Y         int
	Width     int
	Height    int
	Mode      randr.Mode
	Rotation  uint16
	Rotations uint16
	Modes     []randr.Mode
	Preferred int
	Clones    []randr.Output
	MMWidth   uint32
	MMHeight  uint32
}

// Active reports whether the output is lit by a CRTC.
func (o Output) Active() bool {
	return o.Crtc != 0 && o.Width > 0 && o.Height > 0
}

// Builtin reports whether the connector name belongs to an internal panel.
func (o Output) Builtin() bool {
	for _, p := range builtinPrefixes {
		if strings.HasPrefix(o.Name, p) {
			return true
		}
	}
	return false
}

// Resources fetches the current screen resources.
func (c *Connection) Resources() (*randr.GetScreenResourcesCurrentReply, error) {
	if err := c.RequireRandR(); err != nil {
		return nil, err
	}
	res, err := randr.GetScreenResourcesCurrent(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	return res, nil
}

// Outputs lists every output the server reports, lit or not.
func (c *Connection) Outputs() ([]Output, error) {
	res, err := c.Resources()
	if err != nil {
		return nil, err
	}

	primary := randr.Output(0)
	if p, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = p.Output
	}

	outputs := make([]Output, 0, len(res.Outputs))
	for _, id := range res.Outputs {
		o, err := c.output(id, res.ConfigTimestamp)
		if err != nil {
			continue
		}
		o.Primary = id == primary
		outputs = append(outputs, o)
	}
	return outputs, nil
}

// ActiveOutputs lists the outputs currently driven by a CRTC.
func (c *Connection) ActiveOutputs() ([]Output, error) {
	all, err := c.Outputs()
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, o := range all {
		if o.Active() {
			active = append(active, o)
		}
	}
	return active, nil
}

// Output returns the output with the given id.
func (c *Connection) Output(id randr.Output) (Output, error) {
	outputs, err := c.Outputs()
	if err != nil {
		return Output{}, err
	}
	for _, o := range outputs {
		if o.ID == id {
			return o, nil
		}
	}
	return Output{}, fmt.Errorf("output %d: %w", id, ErrNoOutput)
}

// PrimaryOutput returns the primary output, or the first active one when no
// primary is set.
func (c *Connection) PrimaryOutput() (Output, error) {
	active, err := c.ActiveOutputs()
	if err != nil {
		return Output{}, err
	}
	if len(active) == 0 {
		return Output{}, fmt.Errorf("no active outputs: %w", ErrNoOutput)
	}
	for _, o := range active {
		if o.Primary {
			return o, nil
		}
	}
	return active[0], nil
}

func (c *Connection) output(id randr.Output, ts xproto.Timestamp) (Output, error) {
	info, err := randr.GetOutputInfo(c.XUtil.Conn(), id, ts).Reply()
	if err != nil {
		return Output{}, err
	}
	o := Output{
		ID:        id,
		Name:      string(info.Name),
		Crtc:      info.Crtc,
		Connected: info.Connection == randr.ConnectionConnected,
		Modes:     info.Modes,
		Preferred: int(info.NumPreferred),
		Clones:    info.Clones,
		MMWidth:   info.MmWidth,
		MMHeight:  info.MmHeight,
	}
	if info.Crtc == 0 {
		return o, nil
	}
	crtc, err := randr.GetCrtcInfo(c.XUtil.Conn(), info.Crtc, ts).Reply()
	if err != nil {
		return o, nil
	}
	o.X = int(crtc.X)
	o.Y = int(crtc.Y)
	o.Width = int(crtc.Width)
	o.Height = int(crtc.Height)
	o.Mode = crtc.Mode
	o.Rotation = crtc.Rotation
	o.Rotations = crtc.Rotations
	return o, nil
}

// RootDepth returns the bit depth of the root window.
func (c *Connection) RootDepth() int {
	return int(xproto.Setup(c.XUtil.Conn()).DefaultScreen(c.XUtil.Conn()).RootDepth)
}

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (int, int, error) {
	p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(p.RootX), int(p.RootY), nil
}
