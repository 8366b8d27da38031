//go:build linux

package platform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/displayctl/internal/x11"
)

// Raw values reported by the X11 backend. They follow the display API's raw
// status numbering so the shared translation table applies.
const (
	rawFailure         int32 = 1000
	rawIllegalArgument int32 = 1001
	rawRangeCheck      int32 = 1007
	rawNoneAvailable   int32 = 1011
)

// X11Backend implements the display, legacy mode, capture and backlight
// interfaces over a RandR 1.2+ X server. Display ids are RandR output ids.
type X11Backend struct {
	conn   *x11.Connection
	logger *slog.Logger
}

var (
	_ Display          = (*X11Backend)(nil)
	_ LegacyDisplay    = (*X11Backend)(nil)
	_ Capturer         = (*X11Backend)(nil)
	_ BacklightControl = (*X11Backend)(nil)
	_ System           = (*X11Backend)(nil)
)

// Open connects the system backend for this platform.
func Open(display string, logger *slog.Logger) (System, error) {
	b, err := NewX11Backend(display, logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewX11Backend connects to the named X display ("" uses $DISPLAY).
func NewX11Backend(display string, logger *slog.Logger) (*X11Backend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.RequireRandR(); err != nil {
		conn.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &X11Backend{conn: conn, logger: logger}, nil
}

// Close closes the underlying X11 connection.
func (b *X11Backend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Extensions reports which X extensions the server offered.
func (b *X11Backend) Extensions() x11.Extensions {
	return b.conn.Ext
}

// fail converts an X11 error into the raw status the display API would have
// reported for it.
func (b *X11Backend) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	raw := rawFailure
	var (
		valueErr xproto.ValueError
		matchErr xproto.MatchError
	)
	switch {
	case errors.Is(err, x11.ErrGammaRange):
		raw = rawRangeCheck
	case errors.Is(err, x11.ErrNoCommonMode), errors.Is(err, x11.ErrNoOutput), errors.Is(err, x11.ErrNoKeycode),
		errors.As(err, &valueErr), errors.As(err, &matchErr):
		raw = rawIllegalArgument
	case errors.Is(err, x11.ErrExtensionMissing), errors.Is(err, x11.ErrStaticVisual), errors.Is(err, x11.ErrNoProperty):
		raw = rawNoneAvailable
	}
	b.logger.Debug("x11 request failed", "op", op, "raw", raw, "error", err)
	return &StatusError{Op: op, Raw: raw}
}

func illegal(op string) error {
	return &StatusError{Op: op, Raw: rawIllegalArgument}
}

// active returns the lit output behind id.
func (b *X11Backend) active(op string, id DisplayID) (x11.Output, error) {
	o, err := b.conn.Output(randr.Output(id))
	if err != nil {
		return x11.Output{}, b.fail(op, err)
	}
	if !o.Active() {
		return x11.Output{}, illegal(op)
	}
	return o, nil
}

func (b *X11Backend) ActiveDisplays() ([]DisplayID, error) {
	outputs, err := b.conn.ActiveOutputs()
	if err != nil {
		return nil, b.fail("ActiveDisplays", err)
	}
	ids := make([]DisplayID, 0, len(outputs))
	for _, o := range outputs {
		ids = append(ids, DisplayID(o.ID))
	}
	slices.Sort(ids)
	return ids, nil
}

func (b *X11Backend) MainDisplay() (DisplayID, error) {
	o, err := b.conn.PrimaryOutput()
	if err != nil {
		return 0, b.fail("MainDisplay", err)
	}
	return DisplayID(o.ID), nil
}

func (b *X11Backend) DisplayInfo(id DisplayID) (Info, error) {
	o, err := b.active("DisplayInfo", id)
	if err != nil {
		return Info{}, err
	}
	return Info{
		ID:       id,
		Name:     o.Name,
		Bounds:   Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height},
		Builtin:  o.Builtin(),
		BitDepth: b.conn.RootDepth(),
	}, nil
}

func (b *X11Backend) Rotation(id DisplayID) (float64, error) {
	o, err := b.active("Rotation", id)
	if err != nil {
		return 0, err
	}
	return float64(x11.RotationDegrees(o.Rotation)), nil
}

func (b *X11Backend) VendorNumber(id DisplayID) (uint32, error) {
	o, err := b.active("VendorNumber", id)
	if err != nil {
		return 0, err
	}
	edid, err := b.conn.EDID(o.ID)
	if errors.Is(err, x11.ErrNoProperty) {
		return VendorNoMonitor, nil
	}
	if err != nil {
		return 0, b.fail("VendorNumber", err)
	}
	vendor, err := x11.EDIDVendor(edid)
	if err != nil {
		return VendorUnknown, nil
	}
	return uint32(vendor), nil
}

func (b *X11Backend) HideCursor(id DisplayID) error {
	if _, err := b.active("HideCursor", id); err != nil {
		return err
	}
	return b.fail("HideCursor", b.conn.HideCursor())
}

// MoveCursor warps the pointer to (x, y) relative to the display's origin.
func (b *X11Backend) MoveCursor(id DisplayID, x, y int) error {
	o, err := b.active("MoveCursor", id)
	if err != nil {
		return err
	}
	return b.fail("MoveCursor", b.conn.WarpPointer(o.X+x, o.Y+y))
}

func (b *X11Backend) PostKeyEvent(keysym string, down bool) error {
	return b.fail("PostKeyEvent", b.conn.FakeKey(keysym, down))
}

func (b *X11Backend) GammaFormula(id DisplayID) (GammaFormula, error) {
	o, err := b.active("GammaFormula", id)
	if err != nil {
		return GammaFormula{}, err
	}
	r, g, bl, err := b.conn.GammaFormula(o.Crtc)
	if err != nil {
		return GammaFormula{}, b.fail("GammaFormula", err)
	}
	return GammaFormula{Red: fromChannel(r), Green: fromChannel(g), Blue: fromChannel(bl)}, nil
}

func (b *X11Backend) SetGammaFormula(id DisplayID, f GammaFormula) error {
	o, err := b.active("SetGammaFormula", id)
	if err != nil {
		return err
	}
	return b.fail("SetGammaFormula", b.conn.SetGammaFormula(o.Crtc, toChannel(f.Red), toChannel(f.Green), toChannel(f.Blue)))
}

func fromChannel(c x11.Channel) GammaChannel {
	return GammaChannel{Min: c.Min, Max: c.Max, Gamma: c.Gamma}
}

func toChannel(c GammaChannel) x11.Channel {
	return x11.Channel{Min: c.Min, Max: c.Max, Gamma: c.Gamma}
}

func (b *X11Backend) SetTransferTable(id DisplayID, t *TransferTable) error {
	o, err := b.active("SetTransferTable", id)
	if err != nil {
		return err
	}
	if t == nil {
		return illegal("SetTransferTable")
	}
	return b.fail("SetTransferTable", b.conn.SetGammaTable(o.Crtc, t.Red[:], t.Green[:], t.Blue[:]))
}

func (b *X11Backend) CanSetPalette(id DisplayID) (bool, error) {
	if _, err := b.active("CanSetPalette", id); err != nil {
		return false, err
	}
	return b.conn.WritableColormap(), nil
}

// SetPalette stores p into the default colormap; nil selects the default
// 256 colour palette.
func (b *X11Backend) SetPalette(id DisplayID, p color.Palette) error {
	if _, err := b.active("SetPalette", id); err != nil {
		return err
	}
	if p == nil {
		p = palette.Plan9
	}
	return b.fail("SetPalette", b.conn.StorePalette(p))
}

func (b *X11Backend) Modes(id DisplayID) ([]Mode, error) {
	o, err := b.active("Modes", id)
	if err != nil {
		return nil, err
	}
	return b.modes("Modes", o)
}

func (b *X11Backend) modes(op string, o x11.Output) ([]Mode, error) {
	infos, err := b.conn.OutputModes(o)
	if err != nil {
		return nil, b.fail(op, err)
	}
	depth := b.conn.RootDepth()
	modes := make([]Mode, 0, len(infos))
	for i, m := range infos {
		modes = append(modes, Mode{
			ID:          uint32(m.ID),
			Width:       m.Width,
			Height:      m.Height,
			RefreshRate: m.RefreshRate,
			BitDepth:    depth,
			Native:      i < o.Preferred,
		})
	}
	return modes, nil
}

// BestMode prefers an exact size match with the closest refresh rate, then
// the largest mode that fits inside the request, then the first mode.
func (b *X11Backend) BestMode(id DisplayID, bitDepth, width, height int, refresh float64) (Mode, error) {
	modes, err := b.Modes(id)
	if err != nil {
		return Mode{}, err
	}
	if len(modes) == 0 {
		return Mode{}, &StatusError{Op: "BestMode", Raw: rawNoneAvailable}
	}

	var exact *Mode
	for i := range modes {
		m := &modes[i]
		if m.Width != width || m.Height != height {
			continue
		}
		if exact == nil || math.Abs(m.RefreshRate-refresh) < math.Abs(exact.RefreshRate-refresh) {
			exact = m
		}
	}
	if exact != nil {
		return *exact, nil
	}

	var fit *Mode
	for i := range modes {
		m := &modes[i]
		if m.Width > width || m.Height > height {
			continue
		}
		if fit == nil || m.Width*m.Height > fit.Width*fit.Height {
			fit = m
		}
	}
	if fit != nil {
		return *fit, nil
	}
	return modes[0], nil
}

type x11Configuration struct {
	b  *X11Backend
	tx *x11.Transaction
}

func (b *X11Backend) BeginConfiguration() (Configuration, error) {
	tx, err := b.conn.Begin()
	if err != nil {
		return nil, b.fail("BeginConfiguration", err)
	}
	return &x11Configuration{b: b, tx: tx}, nil
}

// ConfigureMirror queues display to mirror source. A zero source unmirrors.
func (c *x11Configuration) ConfigureMirror(display, source DisplayID) error {
	const op = "ConfigureMirror"
	if display == source {
		return illegal(op)
	}
	if _, err := c.b.active(op, display); err != nil {
		return err
	}
	if source != 0 {
		if _, err := c.b.active(op, source); err != nil {
			return err
		}
	}
	return c.b.fail(op, c.tx.Mirror(randr.Output(display), randr.Output(source)))
}

func (c *x11Configuration) Complete() error {
	return c.b.fail("CompleteConfiguration", c.tx.Complete())
}

func (c *x11Configuration) Cancel() error {
	return c.b.fail("CancelConfiguration", c.tx.Cancel())
}

func (b *X11Backend) Windows() ([]Window, error) {
	clients, err := b.conn.ClientWindows()
	if err != nil {
		return nil, b.fail("Windows", err)
	}
	windows := make([]Window, 0, len(clients))
	for _, w := range clients {
		windows = append(windows, Window{
			ID:      WindowID(w.ID),
			PID:     w.PID,
			AppID:   w.Class,
			Title:   w.Title,
			Bounds:  Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height},
			Desktop: w.Desktop,
			Layer:   w.Layer,
			Hidden:  w.Hidden,
		})
	}
	return windows, nil
}

func (b *X11Backend) AllModes(id DisplayID) ([]Mode, error) {
	o, err := b.active("AllModes", id)
	if err != nil {
		return nil, err
	}
	return b.modes("AllModes", o)
}

func (b *X11Backend) SetMode(id DisplayID, m Mode) error {
	o, err := b.active("SetMode", id)
	if err != nil {
		return err
	}
	if !slices.Contains(o.Modes, randr.Mode(m.ID)) {
		return illegal("SetMode")
	}
	return b.fail("SetMode", b.conn.SetMode(o, randr.Mode(m.ID)))
}

func (b *X11Backend) DefaultMode(id DisplayID) (Mode, bool, error) {
	o, err := b.active("DefaultMode", id)
	if err != nil {
		return Mode{}, false, err
	}
	if o.Preferred == 0 {
		return Mode{}, false, nil
	}
	modes, err := b.modes("DefaultMode", o)
	if err != nil || len(modes) == 0 {
		return Mode{}, false, err
	}
	return modes[0], true, nil
}

func (b *X11Backend) CanChangeOrientation(id DisplayID) (bool, error) {
	o, err := b.active("CanChangeOrientation", id)
	if err != nil {
		return false, err
	}
	return o.CanRotate(), nil
}

func (b *X11Backend) SetOrientation(id DisplayID, degrees int) error {
	o, err := b.active("SetOrientation", id)
	if err != nil {
		return err
	}
	rot, ok := x11.RotationFromDegrees(degrees)
	if !ok {
		return illegal("SetOrientation")
	}
	return b.fail("SetOrientation", b.conn.SetRotation(o, rot))
}

func (b *X11Backend) Predicates(id DisplayID) (Predicates, error) {
	o, err := b.active("Predicates", id)
	if err != nil {
		return Predicates{}, err
	}
	p := Predicates{
		BuiltIn:              o.Builtin(),
		Main:                 o.Primary,
		Connected:            o.Connected,
		Rotated:              x11.RotationDegrees(o.Rotation) != 0,
		HasPreferredMode:     o.Preferred > 0,
		CanChangeOrientation: o.CanRotate(),
	}
	if main, err := b.conn.PrimaryOutput(); err == nil {
		p.Main = main.ID == o.ID
	}
	if src, err := b.conn.MirrorSource(o); err == nil {
		p.Mirrored = src != 0
	}
	if res, err := b.conn.Resources(); err == nil {
		p.Interlaced = x11.ModeTable(res)[o.Mode].Interlaced
	}
	_, berr := b.conn.Backlight(o.ID)
	p.HasBacklight = berr == nil
	return p, nil
}

func (b *X11Backend) Backlight(id DisplayID) (float64, error) {
	o, err := b.active("Backlight", id)
	if err != nil {
		return 0, err
	}
	bl, err := b.conn.Backlight(o.ID)
	if err != nil {
		return 0, b.fail("Backlight", err)
	}
	return bl.Level(), nil
}

func (b *X11Backend) SetBacklight(id DisplayID, value float64) error {
	o, err := b.active("SetBacklight", id)
	if err != nil {
		return err
	}
	return b.fail("SetBacklight", b.conn.SetBacklight(o.ID, value))
}

// CreateStream captures cfg.Bounds, given relative to the display origin. An
// empty Bounds captures the whole display.
func (b *X11Backend) CreateStream(cfg StreamConfig, handler FrameHandler) (Stream, error) {
	const op = "CreateStream"
	o, err := b.active(op, cfg.Display)
	if err != nil {
		return nil, err
	}
	display := image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height)
	rect := display
	if !cfg.Bounds.Empty() {
		rect = cfg.Bounds.Image().Add(display.Min).Intersect(display)
	}
	if rect.Empty() {
		return nil, illegal(op)
	}

	var seq atomic.Uint64
	deliver := func(ev x11.StreamEvent, img image.Image) {
		f := Frame{Seq: seq.Add(1), Time: time.Now(), Image: img}
		switch ev {
		case x11.EventFrame:
			f.Status = FrameComplete
		case x11.EventUnchanged:
			f.Status = FrameIdle
		case x11.EventBlank:
			f.Status = FrameBlank
		default:
			f.Status = FrameStopped
		}
		handler(f)
	}
	return &x11Stream{b: b, s: b.conn.NewStream(x11.StreamConfig{
		Rect:        rect,
		Interval:    cfg.MinimumFrameTime,
		PixelFormat: cfg.PixelFormat,
		ShowCursor:  cfg.ShowCursor,
		Logger:      b.logger,
	}, deliver)}, nil
}

type x11Stream struct {
	b *X11Backend
	s *x11.Stream
}

func (s *x11Stream) Start() error { return s.b.fail("StreamStart", s.s.Start()) }
func (s *x11Stream) Stop() error  { return s.b.fail("StreamStop", s.s.Stop()) }
