package command

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/platform/fake"
	"github.com/1broseidon/displayctl/internal/status"
)

type fixture struct {
	p    *fake.Platform
	reg  *capability.Registry
	exec *Executor
	br   *fake.Brightness
	tt   *fake.TrueTone
}

func threeModes() []platform.Mode {
	return []platform.Mode{
		{ID: 10, Width: 1920, Height: 1080, RefreshRate: 60, BitDepth: 24, Native: true},
		{ID: 11, Width: 1280, Height: 720, RefreshRate: 60, BitDepth: 24},
		{ID: 12, Width: 1024, Height: 768, RefreshRate: 60, BitDepth: 24},
	}
}

func newFixture(t *testing.T, withLegacy bool) *fixture {
	t.Helper()
	p := fake.New()
	p.AddScreen(&fake.Screen{
		Info: platform.Info{
			ID: 1, Name: "eDP-1", Builtin: true, BitDepth: 24,
			Bounds: platform.Rect{Width: 1920, Height: 1080},
		},
		Vendor:     0x4c2d,
		Modes:      threeModes(),
		CanRotate:  true,
		CanPalette: true,
		Predicates: platform.Predicates{BuiltIn: true, Main: true, Connected: true, HasBacklight: true},
		Gamma: platform.GammaFormula{
			Red:   platform.GammaChannel{Min: 0, Max: 1, Gamma: 1},
			Green: platform.GammaChannel{Min: 0, Max: 1, Gamma: 1},
			Blue:  platform.GammaChannel{Min: 0, Max: 1, Gamma: 1},
		},
	})
	p.AddScreen(&fake.Screen{Info: platform.Info{
		ID: 2, Name: "HDMI-1", BitDepth: 24,
		Bounds: platform.Rect{X: 1920, Width: 1920, Height: 1080},
	}})

	h, err := display.New(p, 1)
	require.NoError(t, err)

	f := &fixture{
		p:   p,
		reg: capability.NewRegistry(),
		br:  fake.NewBrightness("fake"),
		tt:  fake.NewTrueTone(true, true, false),
	}
	if withLegacy {
		f.reg.Register(capability.LegacyMode, func(context.Context) (any, error) {
			return platform.LegacyDisplay(p), nil
		})
	}
	f.reg.Register(capability.Brightness, func(context.Context) (any, error) {
		return platform.BrightnessService(f.br), nil
	})
	f.reg.Register(capability.TrueTone, func(context.Context) (any, error) {
		return platform.TrueToneClient(f.tt), nil
	})
	f.exec = New(h, f.reg, WithSettleDelay(NoSettle{}))
	return f
}

func codeOf(err error) status.Code { return status.CodeOf(err) }

func TestSetGammaCurve_EqualChannelsRejected(t *testing.T) {
	f := newFixture(t, true)
	for _, r := range []float64{0, 0.5, 1.0, 2.2, -1, 1e9, math.NaN(), math.Inf(1)} {
		err := f.exec.SetGammaCurve(context.Background(), r, r, r)
		assert.Equal(t, status.IllegalArgument, codeOf(err), "gamma %v", r)
	}
	assert.Zero(t, f.p.CallCount("SetGammaFormula"))
}

func TestSetGammaCurve_AppliesFormula(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.exec.SetGammaCurve(context.Background(), 1.0, 1.2, 1.4))

	g, err := f.exec.GammaCurve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.2, g.Green.Gamma, 1e-9)
	assert.InDelta(t, GammaMin, g.Blue.Min, 1e-9)
	assert.InDelta(t, GammaMax, g.Red.Max, 1e-9)
}

func TestSetGammaCurve_RangeCheck(t *testing.T) {
	f := newFixture(t, true)
	assert.Equal(t, status.RangeCheck, codeOf(f.exec.SetGammaCurve(context.Background(), 1, -2, 1)))
	assert.Equal(t, status.RangeCheck, codeOf(f.exec.SetGammaCurve(context.Background(), 1, math.NaN(), 1)))

	f.p.FailNext("SetGammaFormula", status.RawRangeCheck)
	assert.Equal(t, status.RangeCheck, codeOf(f.exec.SetGammaCurve(context.Background(), 1, 2, 3)))
}

func TestSetDisplayMode_Bounds(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetDisplayMode(ctx, 0)))
	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetDisplayMode(ctx, 4)))
	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetDisplayMode(ctx, 5)))
	assert.Zero(t, f.p.CallCount("SetMode"))

	require.NoError(t, f.exec.SetDisplayMode(ctx, 1))
	require.NoError(t, f.exec.SetDisplayMode(ctx, 2))
	assert.Equal(t, 1, f.p.Screen(1).CurrentMode)
	assert.Equal(t, 1280, f.p.Screen(1).Info.Bounds.Width)
}

func TestLegacyMissing_NoneAvailable(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	assert.Equal(t, status.NoneAvailable, codeOf(f.exec.SetDisplayMode(ctx, 1)))
	assert.Equal(t, status.NoneAvailable, codeOf(f.exec.SetRotation(ctx, 90)))
	_, err := f.exec.DefaultMode(ctx)
	assert.Equal(t, status.NoneAvailable, codeOf(err))
	_, err = f.exec.Properties(ctx)
	assert.Equal(t, status.NoneAvailable, codeOf(err))

	assert.Equal(t, 1, f.reg.LoadCount(capability.LegacyMode))
}

func TestSetRotation(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	for _, a := range []int{1, 45, 89, 91, 135, -30} {
		assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetRotation(ctx, a)), "angle %d", a)
	}
	for _, a := range []int{0, 90, 180, 270, 360, -90} {
		require.NoError(t, f.exec.SetRotation(ctx, a), "angle %d", a)
	}
	require.NoError(t, f.exec.SetRotation(ctx, 270))
	deg, err := f.exec.RotationDegrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, 270, deg)

	f.p.Screen(1).CanRotate = false
	assert.Equal(t, status.Unsupported, codeOf(f.exec.SetRotation(ctx, 90)))
}

func TestDefaultMode(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.exec.DefaultMode(ctx)
	assert.Equal(t, status.NoneAvailable, codeOf(err))

	m := threeModes()[0]
	f.p.Screen(1).DefaultMode = &m
	got, err := f.exec.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMoveCursorTo_Bounds(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	for _, pt := range [][2]int{{1920, 0}, {0, 1080}, {-1, 5}, {5, -1}} {
		assert.Equal(t, status.IllegalArgument, codeOf(f.exec.MoveCursorTo(ctx, pt[0], pt[1])), "point %v", pt)
	}
	assert.Zero(t, f.p.CallCount("MoveCursor"))

	require.NoError(t, f.exec.MoveCursorTo(ctx, 1919, 1079))
	assert.Equal(t, 1919, f.p.Screen(1).CursorX)
}

func TestHideCursor(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.exec.HideCursor(context.Background()))
	assert.True(t, f.p.Screen(1).CursorHidden)
}

type countingSettle struct{ writes []Write }

func (c *countingSettle) Settle(_ context.Context, w Write) error {
	c.writes = append(c.writes, w)
	return nil
}

func TestSettleDelay_Injected(t *testing.T) {
	f := newFixture(t, true)
	s := &countingSettle{}
	f.exec = New(f.exec.Handle(), f.reg, WithSettleDelay(s))
	ctx := context.Background()

	require.NoError(t, f.exec.HideCursor(ctx))
	require.NoError(t, f.exec.SetGammaCurve(ctx, 1, 2, 3))
	require.NoError(t, f.exec.SetTransfer(ctx, 1))
	assert.Equal(t, []Write{CursorWrite, GammaWrite, GammaWrite}, s.writes)

	// A failed write does not wait.
	f.p.FailNext("HideCursor", status.RawFailure)
	assert.Equal(t, status.Failure, codeOf(f.exec.HideCursor(ctx)))
	assert.Len(t, s.writes, 3)
}

func TestPressKey(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.exec.PressKey(ctx, "a"))
	assert.Equal(t, []string{"a"}, f.p.Keys)
	assert.Equal(t, 1, f.p.CallCount("PostKeyEvent"))

	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.PressKey(ctx, "NotAKey")))
	assert.Equal(t, 1, f.p.CallCount("PostKeyEvent"))

	require.NoError(t, f.exec.TapKey(ctx, "Return"))
	assert.Equal(t, 3, f.p.CallCount("PostKeyEvent"))
}

func TestSetTransfer_Tables(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.exec.SetTransfer(context.Background(), 1))

	tbl := f.p.Screen(1).LastTransfer
	require.NotNil(t, tbl)
	assert.Equal(t, uint8(3), tbl.Red[1])
	assert.Equal(t, uint8(4), tbl.Green[1])
	assert.Equal(t, uint8(5), tbl.Blue[1])
	assert.Equal(t, uint8(100*3%256), tbl.Red[100])

	a, err := ContrastTable(2)
	require.NoError(t, err)
	b, err := ContrastTable(2)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	id, err := ContrastTable(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), id.Green[200])

	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetTransfer(context.Background(), -1)))
}

func TestSetPalette(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.exec.SetPalette(context.Background()))
	assert.Equal(t, 1, f.p.Screen(1).PaletteWrites)

	f.p.Screen(1).CanPalette = false
	assert.Equal(t, status.NoneAvailable, codeOf(f.exec.SetPalette(context.Background())))
	assert.Equal(t, 1, f.p.Screen(1).PaletteWrites)
}

func TestSetMirror(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.exec.SetMirror(ctx, 2))
	assert.Equal(t, platform.DisplayID(2), f.p.Screen(1).MirrorOf)

	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetMirror(ctx, 1)))
	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetMirror(ctx, 77)))

	f.p.FailNext("ConfigureMirror", status.RawIllegalArgument)
	assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetMirror(ctx, 0)))
	assert.Equal(t, 1, f.p.CallCount("CancelConfiguration"))
	assert.Equal(t, platform.DisplayID(2), f.p.Screen(1).MirrorOf)

	f.p.FailNext("CompleteConfiguration", status.RawFailure)
	assert.Equal(t, status.Failure, codeOf(f.exec.SetMirror(ctx, 0)))
	assert.Equal(t, platform.DisplayID(2), f.p.Screen(1).MirrorOf)

	require.NoError(t, f.exec.SetMirror(ctx, 0))
	assert.Zero(t, f.p.Screen(1).MirrorOf)
}

func TestNativeAndBestMode(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	m, ok, err := f.exec.NativeMode(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(10), m.ID)

	f.p.Screen(1).Modes = threeModes()[1:]
	_, ok, err = f.exec.NativeMode(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	best, err := f.exec.BestMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), best.ID)

	modes, err := f.exec.Modes(ctx)
	require.NoError(t, err)
	assert.Len(t, modes, 2)
}

func TestBrightness(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	for _, v := range []float64{-0.1, 1.01, 5} {
		assert.Equal(t, status.IllegalArgument, codeOf(f.exec.SetBrightness(ctx, v)))
	}
	assert.Zero(t, f.br.Sets)

	require.NoError(t, f.exec.SetBrightness(ctx, 0.4))
	v, err := f.exec.Brightness(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v, 1e-9)

	st, err := f.exec.BrightnessStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fake", st["backend"])
	assert.Equal(t, "true", st["truetone.available"])
}

func TestBrightness_Missing(t *testing.T) {
	f := newFixture(t, true)
	reg := capability.NewRegistry()
	reg.Register(capability.Brightness, func(context.Context) (any, error) {
		return nil, errors.New("no backlight")
	})
	exec := New(f.exec.Handle(), reg, WithSettleDelay(NoSettle{}))

	_, err := exec.Brightness(context.Background())
	assert.Equal(t, status.NoneAvailable, codeOf(err))
	assert.ErrorContains(t, err, "no backlight")
}

func TestSwitchTrueTone(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	changed, err := f.exec.SwitchTrueTone(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	on, _ := f.tt.Enabled()
	assert.True(t, on)

	f.tt = fake.NewTrueTone(true, false, false)
	reg := capability.NewRegistry()
	reg.Register(capability.TrueTone, func(context.Context) (any, error) {
		return platform.TrueToneClient(f.tt), nil
	})
	exec := New(f.exec.Handle(), reg)
	changed, err = exec.SwitchTrueTone(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, f.tt.WriteCount())
}

func TestVendorNumber(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	v, err := f.exec.VendorNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4c2d), v.Number)

	f.p.Screen(1).Vendor = platform.VendorNoMonitor
	v, err = f.exec.VendorNumber(ctx)
	require.NoError(t, err)
	assert.True(t, v.NoMonitor)

	f.p.Screen(1).Vendor = platform.VendorUnknown
	_, err = f.exec.VendorNumber(ctx)
	assert.Equal(t, status.VendorUnknown, codeOf(err))
}

func TestWindows(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.p.SetWindows([]platform.Window{
		{ID: 100, Title: "editor"},
		{ID: 101, Title: "terminal"},
	})

	ws, err := f.exec.Windows(ctx)
	require.NoError(t, err)
	assert.Len(t, ws, 2)

	w, err := f.exec.Window(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "terminal", w.Title)

	for _, i := range []int{-1, 2, 100} {
		_, err := f.exec.Window(ctx, i)
		assert.Equal(t, status.IllegalArgument, codeOf(err), "index %d", i)
	}
}

func TestProperties(t *testing.T) {
	f := newFixture(t, true)
	props, err := f.exec.Properties(context.Background())
	require.NoError(t, err)
	assert.Len(t, props, len(PropertyNames()))
	assert.True(t, props["isBuiltIn"])
	assert.True(t, props["hasBacklight"])
	assert.False(t, props["isMirrored"])
	assert.False(t, props["canChangeOrientation"])
}

func TestTranslate_UnknownRawFallback(t *testing.T) {
	f := newFixture(t, true)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := context.Background()

	exec := New(f.exec.Handle(), f.reg, WithSettleDelay(NoSettle{}), WithLogger(logger))
	f.p.FailNext("HideCursor", 424242)
	require.NoError(t, exec.HideCursor(ctx))
	assert.True(t, strings.Contains(buf.String(), "unrecognized platform status"))

	strict := New(f.exec.Handle(), f.reg, WithSettleDelay(NoSettle{}), WithTranslator(status.Translator{Fallback: status.Failure}))
	f.p.FailNext("HideCursor", 424242)
	assert.Equal(t, status.Failure, codeOf(strict.HideCursor(ctx)))
}

func TestMutate_RevalidatesDisplay(t *testing.T) {
	f := newFixture(t, true)
	f.p.RemoveScreen(1)

	err := f.exec.SetGammaCurve(context.Background(), 1, 2, 3)
	assert.Equal(t, status.Failure, codeOf(err))
	assert.ErrorIs(t, err, display.ErrInvalidDisplay)
	assert.Zero(t, f.p.CallCount("SetGammaFormula"))
}
