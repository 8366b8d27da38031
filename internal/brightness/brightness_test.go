package brightness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/platform/fake"
	"github.com/1broseidon/displayctl/internal/sessionbus"
	"github.com/1broseidon/displayctl/internal/status"
)

func gsdBus(level int32) *sessionbus.Memory {
	bus := sessionbus.NewMemory()
	bus.Own(PowerName)
	bus.Put(PowerName, PowerPath, PowerIface, "Brightness", level)
	return bus
}

func TestGSD_GetSet(t *testing.T) {
	bus := gsdBus(40)
	g := NewGSD(bus)

	v, err := g.Brightness(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.40, v, 1e-9)

	require.NoError(t, g.SetBrightness(1, 0.756))
	v, err = g.Brightness(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.76, v, 1e-9)

	st, err := g.Status()
	require.NoError(t, err)
	assert.Equal(t, VariantGSD, st["variant"])
	assert.Equal(t, "76", st["power.brightness"])
}

func TestGSD_NoPanel(t *testing.T) {
	g := NewGSD(gsdBus(-1))
	_, err := g.Brightness(1)
	var raw *platform.StatusError
	require.ErrorAs(t, err, &raw)
	assert.Equal(t, status.NoneAvailable, status.Translate(raw.Raw))
	assert.Error(t, g.SetBrightness(1, 0.5))
}

func screens(backlight float64) *fake.Platform {
	p := fake.New()
	p.AddScreen(&fake.Screen{Info: platform.Info{ID: 1, Name: "eDP-1", Builtin: true}, Backlight: backlight})
	p.AddScreen(&fake.Screen{Info: platform.Info{ID: 2, Name: "HDMI-1"}, Backlight: -1})
	return p
}

func TestBacklight(t *testing.T) {
	p := screens(0.25)
	b := NewBacklight(p, p.ActiveDisplays)

	v, err := b.Brightness(1)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
	require.NoError(t, b.SetBrightness(1, 0.9))
	assert.Equal(t, 0.9, p.Screen(1).Backlight)

	st, err := b.Status()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"variant": VariantBacklight, "display.1": "0.90", "display.2": "none"}, st)
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		bus  sessionbus.Bus
		sys  platform.System
		want string
	}{
		{"gsd", gsdBus(50), screens(-1), VariantGSD},
		{"gsd without panel falls back", gsdBus(-1), screens(0.5), VariantBacklight},
		{"no daemon", sessionbus.NewMemory(), screens(0.5), VariantBacklight},
		{"nil bus", nil, screens(0.5), VariantBacklight},
		{"none", sessionbus.NewMemory(), screens(-1), ""},
		{"nothing", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := Probe(tt.bus, tt.sys, nil)
			if tt.want == "" {
				assert.ErrorIs(t, err, ErrUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.Name())
		})
	}
}
