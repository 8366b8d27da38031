package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrNoKeycode is returned when no keycode produces the requested keysym.
var ErrNoKeycode = errors.New("no keycode for keysym")

// KeycodeFor returns the first keycode bound to the named keysym in the
// current keyboard mapping.
func (c *Connection) KeycodeFor(keysym string) (xproto.Keycode, error) {
	codes := keybind.StrToKeycodes(c.XUtil, keysym)
	if len(codes) == 0 {
		return 0, fmt.Errorf("keysym %q: %w", keysym, ErrNoKeycode)
	}
	return codes[0], nil
}

// FakeKey injects a key press or release through XTEST.
func (c *Connection) FakeKey(keysym string, down bool) error {
	if !c.Ext.XTest {
		return fmt.Errorf("XTEST: %w", ErrExtensionMissing)
	}
	code, err := c.KeycodeFor(keysym)
	if err != nil {
		return err
	}
	typ := byte(xproto.KeyRelease)
	if down {
		typ = xproto.KeyPress
	}
	return xtest.FakeInputChecked(c.XUtil.Conn(), typ, byte(code), xproto.TimeCurrentTime, c.Root, 0, 0, 0).Check()
}
