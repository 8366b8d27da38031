package sessionbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	const dest, path, iface = "org.example.Svc", dbus.ObjectPath("/org/example/Svc"), "org.example.Svc.Iface"

	_, err := m.Get(dest, path, iface, "Level")
	assert.ErrorIs(t, err, ErrUnknownProperty)

	m.Put(dest, path, iface, "Level", int32(40))
	m.Put(dest, path, iface+"2", "Other", true)
	require.NoError(t, m.Set(dest, path, iface, "Level", int32(70)))

	v, err := m.Get(dest, path, iface, "Level")
	require.NoError(t, err)
	n, ok := Int32(v)
	assert.True(t, ok)
	assert.EqualValues(t, 70, n)

	all, err := m.GetAll(dest, path, iface)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	m.ReadOnly["Level"] = true
	assert.Error(t, m.Set(dest, path, iface, "Level", int32(1)))
	assert.Equal(t, 1, m.Sets)
}

func TestVariantHelpers(t *testing.T) {
	n, ok := Int32(dbus.MakeVariant(uint32(9)))
	assert.True(t, ok)
	assert.EqualValues(t, 9, n)

	_, ok = Int32(dbus.MakeVariant("nine"))
	assert.False(t, ok)

	b, ok := Bool(dbus.MakeVariant(true))
	assert.True(t, ok)
	assert.True(t, b)
}
