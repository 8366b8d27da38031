// Package truetone toggles ambient colour adaptation through the GNOME
// settings daemon colour plugin (night light).
package truetone

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/sessionbus"
)

// gsd-color object coordinates.
const (
	ColorName  = "org.gnome.SettingsDaemon.Color"
	ColorPath  = dbus.ObjectPath("/org/gnome/SettingsDaemon/Color")
	ColorIface = "org.gnome.SettingsDaemon.Color"
)

const (
	propActive   = "NightLightActive"
	propDisabled = "DisabledUntilTomorrow"
)

// Client reports night light as enabled while it is active and not
// suspended for the day. Toggling flips the suspension.
type Client struct {
	bus       sessionbus.Bus
	available bool
	supported bool
}

var _ platform.TrueToneClient = (*Client)(nil)

// New queries the colour plugin once. A client is always returned; its
// Available and Supported flags record what the query found.
func New(bus sessionbus.Bus, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{bus: bus}
	if bus == nil {
		return c
	}
	owned, err := bus.HasOwner(ColorName)
	if err != nil {
		logger.Debug("gsd-color unavailable", "error", err)
		return c
	}
	c.available = owned
	if !owned {
		return c
	}
	if _, err := c.flag(propActive); err != nil {
		logger.Debug("night light not supported", "error", err)
		return c
	}
	c.supported = true
	return c
}

func (c *Client) Available() bool { return c.available }
func (c *Client) Supported() bool { return c.supported }

func (c *Client) flag(prop string) (bool, error) {
	v, err := c.bus.Get(ColorName, ColorPath, ColorIface, prop)
	if err != nil {
		return false, err
	}
	b, ok := sessionbus.Bool(v)
	if !ok {
		return false, fmt.Errorf("%s has type %s", prop, v.Signature())
	}
	return b, nil
}

func (c *Client) Enabled() (bool, error) {
	active, err := c.flag(propActive)
	if err != nil {
		return false, err
	}
	disabled, err := c.flag(propDisabled)
	if err != nil {
		return false, err
	}
	return active && !disabled, nil
}

func (c *Client) SetEnabled(enabled bool) error {
	return c.bus.Set(ColorName, ColorPath, ColorIface, propDisabled, !enabled)
}
