package truetone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/sessionbus"
)

func colorBus(active, disabled bool) *sessionbus.Memory {
	bus := sessionbus.NewMemory()
	bus.Own(ColorName)
	bus.Put(ColorName, ColorPath, ColorIface, propActive, active)
	bus.Put(ColorName, ColorPath, ColorIface, propDisabled, disabled)
	bus.ReadOnly[propActive] = true
	return bus
}

func TestClient_Toggle(t *testing.T) {
	c := New(colorBus(true, false), nil)
	require.True(t, c.Available())
	require.True(t, c.Supported())

	on, err := c.Enabled()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, c.SetEnabled(false))
	on, err = c.Enabled()
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, c.SetEnabled(true))
	on, err = c.Enabled()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestClient_OutsideSchedule(t *testing.T) {
	c := New(colorBus(false, false), nil)
	require.NoError(t, c.SetEnabled(true))
	on, err := c.Enabled()
	require.NoError(t, err)
	assert.False(t, on, "night light is inactive outside its schedule")
}

func TestNew_Probe(t *testing.T) {
	c := New(nil, nil)
	assert.False(t, c.Available())

	c = New(sessionbus.NewMemory(), nil)
	assert.False(t, c.Available())

	bus := sessionbus.NewMemory()
	bus.Own(ColorName)
	c = New(bus, nil)
	assert.True(t, c.Available())
	assert.False(t, c.Supported())

	bus = sessionbus.NewMemory()
	bus.Err = errors.New("bus down")
	c = New(bus, nil)
	assert.False(t, c.Available())
}
