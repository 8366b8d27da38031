package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// ClientWindow is the metadata of one managed top-level window.
type ClientWindow struct {
	ID      xproto.Window
	PID     int
	Class   string
	Title   string
	X       int
	Y       int
	Width   int
	Height  int
	Desktop int
	Layer   int
	Hidden  bool
}

// ClientWindows lists managed windows in stacking order, bottom first. Docks,
// desktops and other non-application windows are skipped.
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, err
		}
	}

	windows := make([]ClientWindow, 0, len(clients))
	for layer, id := range clients {
		if !c.IsNormalWindow(id) {
			continue
		}
		x, y, w, h, ok := c.windowRect(id)
		if !ok {
			continue
		}
		win := ClientWindow{
			ID:      id,
			Class:   c.windowClass(id),
			Title:   c.windowTitle(id),
			X:       x,
			Y:       y,
			Width:   w,
			Height:  h,
			Desktop: c.windowDesktop(id),
			Layer:   layer,
			Hidden:  c.isHidden(id),
		}
		if p, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
			win.PID = int(p)
		}
		windows = append(windows, win)
	}
	return windows, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) windowRect(id xproto.Window) (x, y, w, h int, ok bool) {
	conn := c.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	tr, err := xproto.TranslateCoordinates(conn, id, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return int(tr.DstX), int(tr.DstY), int(geom.Width), int(geom.Height), true
}

func (c *Connection) windowClass(id xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(id xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, id); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// windowDesktop returns -1 for sticky windows and windows without a desktop.
func (c *Connection) windowDesktop(id xproto.Window) int {
	d, err := ewmh.WmDesktopGet(c.XUtil, id)
	if err != nil || d == uint(0xFFFFFFFF) {
		return -1
	}
	return int(d)
}

func (c *Connection) isHidden(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}
