package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrExtensionMissing is returned when a required X extension is absent.
var ErrExtensionMissing = errors.New("x11 extension missing")

// Extensions records which X extensions initialized on the connection.
type Extensions struct {
	RandR      bool
	RandRMajor uint32
	RandRMinor uint32
	XFixes     bool
	XTest      bool
}

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
	Ext   Extensions

	// Serializes RandR reconfiguration so screen size and CRTC updates from
	// different callers do not interleave.
	configMu sync.Mutex

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom
}

// NewConnection connects to the named X display ("" uses $DISPLAY) and
// initializes the extensions display control needs. Missing optional
// extensions are recorded in Ext rather than failing the connection.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		atoms: make(map[string]xproto.Atom),
	}
	c.initExtensions()

	// Loads the keyboard mapping that keysym lookups resolve against.
	keybind.Initialize(xu)
	return c, nil
}

func (c *Connection) initExtensions() {
	conn := c.XUtil.Conn()

	if err := randr.Init(conn); err == nil {
		if v, err := randr.QueryVersion(conn, 1, 5).Reply(); err == nil {
			c.Ext.RandR = true
			c.Ext.RandRMajor = v.MajorVersion
			c.Ext.RandRMinor = v.MinorVersion
		}
	}
	if err := xfixes.Init(conn); err == nil {
		// XFIXES requests are rejected until the version is negotiated.
		if _, err := xfixes.QueryVersion(conn, 5, 0).Reply(); err == nil {
			c.Ext.XFixes = true
		}
	}
	if err := xtest.Init(conn); err == nil {
		c.Ext.XTest = true
	}
}

// RequireRandR reports ErrExtensionMissing unless RandR 1.2 or later is present.
func (c *Connection) RequireRandR() error {
	if !c.Ext.RandR || (c.Ext.RandRMajor == 1 && c.Ext.RandRMinor < 2) {
		return fmt.Errorf("RandR 1.2: %w", ErrExtensionMissing)
	}
	return nil
}

// Atom interns name, caching the result.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	c.atomMu.Lock()
	defer c.atomMu.Unlock()
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(c.XUtil.Conn(), true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	if reply.Atom != xproto.AtomNone {
		c.atoms[name] = reply.Atom
	}
	return reply.Atom, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
