package x11

import (
	"fmt"
	"image"
	"image/color"

	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// HideCursor hides the pointer on the root window until the client
// disconnects or ShowCursor is called.
func (c *Connection) HideCursor() error {
	if !c.Ext.XFixes {
		return fmt.Errorf("XFIXES: %w", ErrExtensionMissing)
	}
	return xfixes.HideCursorChecked(c.XUtil.Conn(), c.Root).Check()
}

// ShowCursor reverses HideCursor.
func (c *Connection) ShowCursor() error {
	if !c.Ext.XFixes {
		return fmt.Errorf("XFIXES: %w", ErrExtensionMissing)
	}
	return xfixes.ShowCursorChecked(c.XUtil.Conn(), c.Root).Check()
}

// WarpPointer moves the pointer to root coordinates (x, y).
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, c.Root,
		0, 0, 0, 0, int16(x), int16(y)).Check()
}

// CursorImage is the current pointer sprite positioned in root coordinates.
type CursorImage struct {
	X     int
	Y     int
	Image *image.NRGBA
}

// Cursor fetches the current cursor sprite. The image origin is the sprite's
// top-left corner, already offset by the hotspot.
func (c *Connection) Cursor() (*CursorImage, error) {
	if !c.Ext.XFixes {
		return nil, fmt.Errorf("XFIXES: %w", ErrExtensionMissing)
	}
	reply, err := xfixes.GetCursorImage(c.XUtil.Conn()).Reply()
	if err != nil {
		return nil, err
	}
	w, h := int(reply.Width), int(reply.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, argb := range reply.CursorImage {
		if i >= w*h {
			break
		}
		a := uint8(argb >> 24)
		r, g, b := uint8(argb>>16), uint8(argb>>8), uint8(argb)
		// The sprite is premultiplied; NRGBA wants straight alpha.
		if a != 0 && a != 0xff {
			r = uint8(uint32(r) * 0xff / uint32(a))
			g = uint8(uint32(g) * 0xff / uint32(a))
			b = uint8(uint32(b) * 0xff / uint32(a))
		}
		img.SetNRGBA(i%w, i/w, color.NRGBA{R: r, G: g, B: b, A: a})
	}
	return &CursorImage{
		X:     int(reply.X) - int(reply.Xhot),
		Y:     int(reply.Y) - int(reply.Yhot),
		Image: img,
	}, nil
}
