package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/platform/fake"
	"github.com/1broseidon/displayctl/internal/status"
)

func newPlatform() *fake.Platform {
	p := fake.New()
	p.AddScreen(&fake.Screen{Info: platform.Info{
		ID: 1, Name: "eDP-1", Builtin: true, BitDepth: 24,
		Bounds: platform.Rect{Width: 1920, Height: 1080},
	}})
	p.AddScreen(&fake.Screen{Info: platform.Info{
		ID: 2, Name: "HDMI-1", BitDepth: 24,
		Bounds: platform.Rect{X: 1920, Width: 2560, Height: 1440},
	}})
	return p
}

func TestNew_InactiveID(t *testing.T) {
	_, err := New(newPlatform(), 999)
	require.Error(t, err)
	assert.Equal(t, status.InvalidDisplay, status.CodeOf(err))
	assert.True(t, IsInvalid(err))
}

func TestNew_RequireBuiltin(t *testing.T) {
	p := newPlatform()

	h, err := New(p, 1, RequireBuiltin(true))
	require.NoError(t, err)
	assert.Equal(t, platform.DisplayID(1), h.ID())

	_, err = New(p, 2, RequireBuiltin(true))
	assert.Equal(t, status.InvalidDisplay, status.CodeOf(err))

	_, err = New(p, 1, RequireBuiltin(false))
	assert.Equal(t, status.InvalidDisplay, status.CodeOf(err))
}

func TestHandle_AttributesAreLive(t *testing.T) {
	p := newPlatform()
	h, err := New(p, 2)
	require.NoError(t, err)

	b, err := h.Bounds()
	require.NoError(t, err)
	assert.Equal(t, 2560, b.Width)

	p.Screen(2).Info.Bounds.Width = 1280
	b, err = h.Bounds()
	require.NoError(t, err)
	assert.Equal(t, 1280, b.Width)

	builtin, err := h.Builtin()
	require.NoError(t, err)
	assert.False(t, builtin)

	depth, err := h.BitDepth()
	require.NoError(t, err)
	assert.Equal(t, 24, depth)
}

func TestHandle_Revalidate(t *testing.T) {
	p := newPlatform()
	h, err := New(p, 2)
	require.NoError(t, err)
	assert.True(t, h.IsDisplay())

	p.RemoveScreen(2)
	assert.False(t, h.IsDisplay())
	assert.Equal(t, status.InvalidDisplay, status.CodeOf(h.Revalidate()))
}

func TestMain_UsesPrimary(t *testing.T) {
	h, err := Main(newPlatform())
	require.NoError(t, err)
	assert.Equal(t, platform.DisplayID(1), h.ID())

	_, err = Main(fake.New())
	assert.Equal(t, status.InvalidDisplay, status.CodeOf(err))
}
