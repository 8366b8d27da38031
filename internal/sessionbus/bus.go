// Package sessionbus is a thin property client for desktop services on the
// D-Bus session bus.
package sessionbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	propertiesGet    = "org.freedesktop.DBus.Properties.Get"
	propertiesSet    = "org.freedesktop.DBus.Properties.Set"
	propertiesGetAll = "org.freedesktop.DBus.Properties.GetAll"
	nameHasOwner     = "org.freedesktop.DBus.NameHasOwner"
)

// Bus is the subset of D-Bus the display services need.
type Bus interface {
	HasOwner(name string) (bool, error)
	Get(dest string, path dbus.ObjectPath, iface, prop string) (dbus.Variant, error)
	Set(dest string, path dbus.ObjectPath, iface, prop string, value any) error
	GetAll(dest string, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error)
}

// Conn is a Bus backed by a live D-Bus connection.
type Conn struct {
	conn *dbus.Conn
}

var _ Bus = (*Conn)(nil)

// Session returns a Bus on the shared session bus connection.
func Session() (*Conn, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Conn{conn: conn}, nil
}

// HasOwner reports whether a client currently owns name.
func (c *Conn) HasOwner(name string) (bool, error) {
	var owned bool
	if err := c.conn.BusObject().Call(nameHasOwner, 0, name).Store(&owned); err != nil {
		return false, err
	}
	return owned, nil
}

func (c *Conn) Get(dest string, path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	call := c.conn.Object(dest, path).Call(propertiesGet, 0, iface, prop)
	if call.Err != nil {
		return v, fmt.Errorf("get %s.%s: %w", iface, prop, call.Err)
	}
	err := call.Store(&v)
	return v, err
}

func (c *Conn) Set(dest string, path dbus.ObjectPath, iface, prop string, value any) error {
	call := c.conn.Object(dest, path).Call(propertiesSet, 0, iface, prop, dbus.MakeVariant(value))
	if call.Err != nil {
		return fmt.Errorf("set %s.%s: %w", iface, prop, call.Err)
	}
	return nil
}

func (c *Conn) GetAll(dest string, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	props := make(map[string]dbus.Variant)
	call := c.conn.Object(dest, path).Call(propertiesGetAll, 0, iface)
	if call.Err != nil {
		return nil, fmt.Errorf("get all %s: %w", iface, call.Err)
	}
	err := call.Store(&props)
	return props, err
}

// Int32 reads an integer property, accepting any integer wire type.
func Int32(v dbus.Variant) (int32, bool) {
	switch n := v.Value().(type) {
	case int32:
		return n, true
	case int64:
		return int32(n), true
	case uint32:
		return int32(n), true
	case int16:
		return int32(n), true
	case uint16:
		return int32(n), true
	case byte:
		return int32(n), true
	}
	return 0, false
}

// Bool reads a boolean property.
func Bool(v dbus.Variant) (bool, bool) {
	b, ok := v.Value().(bool)
	return b, ok
}
