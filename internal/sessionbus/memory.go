package sessionbus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// ErrUnknownProperty is returned by Memory for properties never stored.
var ErrUnknownProperty = errors.New("unknown property")

// Memory is an in-process Bus holding properties in a map. Tests use it in
// place of a session bus.
type Memory struct {
	mu     sync.Mutex
	owners map[string]bool
	props  map[string]dbus.Variant

	// ReadOnly properties reject Set.
	ReadOnly map[string]bool
	// Err, when set, fails every call.
	Err  error
	Sets int
}

var _ Bus = (*Memory)(nil)

// NewMemory returns an empty bus.
func NewMemory() *Memory {
	return &Memory{
		owners:   make(map[string]bool),
		props:    make(map[string]dbus.Variant),
		ReadOnly: make(map[string]bool),
	}
}

// Own marks name as owned.
func (m *Memory) Own(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[name] = true
}

// Put stores a property value.
func (m *Memory) Put(dest string, path dbus.ObjectPath, iface, prop string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key(dest, path, iface, prop)] = dbus.MakeVariant(value)
}

func key(dest string, path dbus.ObjectPath, iface, prop string) string {
	return fmt.Sprintf("%s%s/%s.%s", dest, path, iface, prop)
}

func (m *Memory) HasOwner(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.owners[name], nil
}

func (m *Memory) Get(dest string, path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return dbus.Variant{}, m.Err
	}
	v, ok := m.props[key(dest, path, iface, prop)]
	if !ok {
		return dbus.Variant{}, fmt.Errorf("%s.%s: %w", iface, prop, ErrUnknownProperty)
	}
	return v, nil
}

func (m *Memory) Set(dest string, path dbus.ObjectPath, iface, prop string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(dest, path, iface, prop)
	if m.ReadOnly[prop] {
		return fmt.Errorf("%s.%s is read-only", iface, prop)
	}
	m.Sets++
	m.props[k] = dbus.MakeVariant(value)
	return nil
}

func (m *Memory) GetAll(dest string, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	prefix := fmt.Sprintf("%s%s/%s.", dest, path, iface)
	out := make(map[string]dbus.Variant)
	for k, v := range m.props {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out, nil
}
