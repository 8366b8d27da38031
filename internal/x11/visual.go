package x11

import (
	"errors"
	"image/color"

	"github.com/BurntSushi/xgb/xproto"
)

// ErrStaticVisual is returned when the default visual has a fixed colormap.
var ErrStaticVisual = errors.New("default visual has no writable colormap")

// VisualClass returns the class of the default screen's root visual.
func (c *Connection) VisualClass() byte {
	conn := c.XUtil.Conn()
	screen := xproto.Setup(conn).DefaultScreen(conn)
	for _, depth := range screen.AllowedDepths {
		for _, v := range depth.Visuals {
			if v.VisualId == screen.RootVisual {
				return v.Class
			}
		}
	}
	return xproto.VisualClassTrueColor
}

// WritableColormap reports whether the default colormap can be written.
func (c *Connection) WritableColormap() bool {
	switch c.VisualClass() {
	case xproto.VisualClassPseudoColor, xproto.VisualClassDirectColor, xproto.VisualClassGrayScale:
		return true
	}
	return false
}

// StorePalette writes palette into the default colormap starting at pixel 0.
func (c *Connection) StorePalette(palette color.Palette) error {
	if !c.WritableColormap() {
		return ErrStaticVisual
	}
	conn := c.XUtil.Conn()
	cmap := xproto.Setup(conn).DefaultScreen(conn).DefaultColormap

	items := make([]xproto.Coloritem, len(palette))
	for i, col := range palette {
		r, g, b, _ := col.RGBA()
		items[i] = xproto.Coloritem{
			Pixel: uint32(i),
			Red:   uint16(r),
			Green: uint16(g),
			Blue:  uint16(b),
			Flags: xproto.ColorFlagRed | xproto.ColorFlagGreen | xproto.ColorFlagBlue,
		}
	}
	return xproto.StoreColorsChecked(conn, cmap, items).Check()
}
