// Package fake provides an in-memory platform used by tests.
package fake

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/1broseidon/displayctl/internal/platform"
)

// ErrNoDisplay is returned for ids that are not in the active set.
var ErrNoDisplay = errors.New("fake: no such display")

// Screen is one simulated display.
type Screen struct {
	Info          platform.Info
	Rotation      float64
	Vendor        uint32
	Gamma         platform.GammaFormula
	Modes         []platform.Mode
	CurrentMode   int
	DefaultMode   *platform.Mode
	CanRotate     bool
	CanPalette    bool
	Predicates    platform.Predicates
	Backlight     float64
	MirrorOf      platform.DisplayID
	CursorHidden  bool
	CursorX       int
	CursorY       int
	LastTransfer  *platform.TransferTable
	PaletteWrites int
}

// Platform implements platform.System in memory.
type Platform struct {
	mu      sync.Mutex
	screens map[platform.DisplayID]*Screen
	order   []platform.DisplayID
	main    platform.DisplayID
	windows []platform.Window

	// Raw statuses returned by the next call to the named operation.
	Failures map[string]int32

	Keys    []string
	Calls   map[string]int
	Streams []*Stream

	streamDelays map[platform.DisplayID]time.Duration
}

// New returns an empty fake platform.
func New() *Platform {
	return &Platform{
		screens:  make(map[platform.DisplayID]*Screen),
		Failures: make(map[string]int32),
		Calls:    make(map[string]int),
	}
}

// AddScreen registers s. The first screen added becomes the main display.
func (p *Platform) AddScreen(s *Screen) *Platform {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.order) == 0 {
		p.main = s.Info.ID
	}
	p.screens[s.Info.ID] = s
	p.order = append(p.order, s.Info.ID)
	return p
}

// RemoveScreen drops id from the active set.
func (p *Platform) RemoveScreen(id platform.DisplayID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.screens, id)
	for i, d := range p.order {
		if d == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// SetWindows replaces the window list.
func (p *Platform) SetWindows(w []platform.Window) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.windows = append([]platform.Window(nil), w...)
}

// Screen returns the simulated screen for id.
func (p *Platform) Screen(id platform.DisplayID) *Screen {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screens[id]
}

// CallCount returns how many times op was invoked.
func (p *Platform) CallCount(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Calls[op]
}

// FailNext makes the next call to op report raw.
func (p *Platform) FailNext(op string, raw int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Failures[op] = raw
}

func (p *Platform) enter(op string, id platform.DisplayID, needScreen bool) (*Screen, error) {
	p.Calls[op]++
	if raw, ok := p.Failures[op]; ok {
		delete(p.Failures, op)
		return nil, &platform.StatusError{Op: op, Raw: raw}
	}
	if !needScreen {
		return nil, nil
	}
	s, ok := p.screens[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", op, id, ErrNoDisplay)
	}
	return s, nil
}

func (p *Platform) ActiveDisplays() ([]platform.DisplayID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["ActiveDisplays"]++
	return append([]platform.DisplayID(nil), p.order...), nil
}

func (p *Platform) MainDisplay() (platform.DisplayID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.order) == 0 {
		return 0, ErrNoDisplay
	}
	return p.main, nil
}

func (p *Platform) DisplayInfo(id platform.DisplayID) (platform.Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("DisplayInfo", id, true)
	if err != nil {
		return platform.Info{}, err
	}
	return s.Info, nil
}

func (p *Platform) Rotation(id platform.DisplayID) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("Rotation", id, true)
	if err != nil {
		return 0, err
	}
	return s.Rotation, nil
}

func (p *Platform) VendorNumber(id platform.DisplayID) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("VendorNumber", id, true)
	if err != nil {
		return 0, err
	}
	return s.Vendor, nil
}

func (p *Platform) HideCursor(id platform.DisplayID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("HideCursor", id, true)
	if err != nil {
		return err
	}
	s.CursorHidden = true
	return nil
}

func (p *Platform) MoveCursor(id platform.DisplayID, x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("MoveCursor", id, true)
	if err != nil {
		return err
	}
	s.CursorX, s.CursorY = x, y
	return nil
}

func (p *Platform) PostKeyEvent(keysym string, down bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.enter("PostKeyEvent", 0, false); err != nil {
		return err
	}
	if down {
		p.Keys = append(p.Keys, keysym)
	}
	return nil
}

func (p *Platform) GammaFormula(id platform.DisplayID) (platform.GammaFormula, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("GammaFormula", id, true)
	if err != nil {
		return platform.GammaFormula{}, err
	}
	return s.Gamma, nil
}

func (p *Platform) SetGammaFormula(id platform.DisplayID, f platform.GammaFormula) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetGammaFormula", id, true)
	if err != nil {
		return err
	}
	s.Gamma = f
	return nil
}

func (p *Platform) SetTransferTable(id platform.DisplayID, t *platform.TransferTable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetTransferTable", id, true)
	if err != nil {
		return err
	}
	cp := *t
	s.LastTransfer = &cp
	return nil
}

func (p *Platform) CanSetPalette(id platform.DisplayID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("CanSetPalette", id, true)
	if err != nil {
		return false, err
	}
	return s.CanPalette, nil
}

func (p *Platform) SetPalette(id platform.DisplayID, _ color.Palette) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetPalette", id, true)
	if err != nil {
		return err
	}
	s.PaletteWrites++
	return nil
}

func (p *Platform) Modes(id platform.DisplayID) ([]platform.Mode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("Modes", id, true)
	if err != nil {
		return nil, err
	}
	return append([]platform.Mode(nil), s.Modes...), nil
}

func (p *Platform) BestMode(id platform.DisplayID, bitDepth, width, height int, refresh float64) (platform.Mode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("BestMode", id, true)
	if err != nil {
		return platform.Mode{}, err
	}
	if len(s.Modes) == 0 {
		return platform.Mode{}, &platform.StatusError{Op: "BestMode", Raw: 1011}
	}
	best := s.Modes[0]
	for _, m := range s.Modes {
		if m.Width == width && m.Height == height {
			return m, nil
		}
	}
	return best, nil
}

// Configuration records mirror requests until completed.
type Configuration struct {
	p       *Platform
	mirrors map[platform.DisplayID]platform.DisplayID
	done    bool
}

func (p *Platform) BeginConfiguration() (platform.Configuration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.enter("BeginConfiguration", 0, false); err != nil {
		return nil, err
	}
	return &Configuration{p: p, mirrors: make(map[platform.DisplayID]platform.DisplayID)}, nil
}

func (c *Configuration) ConfigureMirror(display, source platform.DisplayID) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if _, err := c.p.enter("ConfigureMirror", 0, false); err != nil {
		return err
	}
	c.mirrors[display] = source
	return nil
}

func (c *Configuration) Complete() error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.done {
		return errors.New("fake: configuration already finished")
	}
	c.done = true
	if _, err := c.p.enter("CompleteConfiguration", 0, false); err != nil {
		return err
	}
	for d, src := range c.mirrors {
		if s, ok := c.p.screens[d]; ok {
			s.MirrorOf = src
		}
	}
	return nil
}

func (c *Configuration) Cancel() error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	c.p.Calls["CancelConfiguration"]++
	c.done = true
	return nil
}

func (p *Platform) Windows() ([]platform.Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.enter("Windows", 0, false); err != nil {
		return nil, err
	}
	return append([]platform.Window(nil), p.windows...), nil
}

// Legacy display subsystem.

func (p *Platform) AllModes(id platform.DisplayID) ([]platform.Mode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("AllModes", id, true)
	if err != nil {
		return nil, err
	}
	return append([]platform.Mode(nil), s.Modes...), nil
}

func (p *Platform) SetMode(id platform.DisplayID, m platform.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetMode", id, true)
	if err != nil {
		return err
	}
	for i, candidate := range s.Modes {
		if candidate.ID == m.ID {
			s.CurrentMode = i
			s.Info.Bounds.Width = m.Width
			s.Info.Bounds.Height = m.Height
			return nil
		}
	}
	return &platform.StatusError{Op: "SetMode", Raw: 1001}
}

func (p *Platform) DefaultMode(id platform.DisplayID) (platform.Mode, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("DefaultMode", id, true)
	if err != nil {
		return platform.Mode{}, false, err
	}
	if s.DefaultMode == nil {
		return platform.Mode{}, false, nil
	}
	return *s.DefaultMode, true, nil
}

func (p *Platform) CanChangeOrientation(id platform.DisplayID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("CanChangeOrientation", id, true)
	if err != nil {
		return false, err
	}
	return s.CanRotate, nil
}

func (p *Platform) SetOrientation(id platform.DisplayID, degrees int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetOrientation", id, true)
	if err != nil {
		return err
	}
	s.Rotation = float64(((degrees % 360) + 360) % 360)
	return nil
}

func (p *Platform) Predicates(id platform.DisplayID) (platform.Predicates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("Predicates", id, true)
	if err != nil {
		return platform.Predicates{}, err
	}
	return s.Predicates, nil
}

// Backlight returns the screen's backlight level. A negative level means the
// screen has no backlight.
func (p *Platform) Backlight(id platform.DisplayID) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("Backlight", id, true)
	if err != nil {
		return 0, err
	}
	if s.Backlight < 0 {
		return 0, &platform.StatusError{Op: "Backlight", Raw: 1011}
	}
	return s.Backlight, nil
}

func (p *Platform) SetBacklight(id platform.DisplayID, value float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.enter("SetBacklight", id, true)
	if err != nil {
		return err
	}
	if s.Backlight < 0 {
		return &platform.StatusError{Op: "SetBacklight", Raw: 1011}
	}
	s.Backlight = value
	return nil
}

// Close counts calls; the fake holds no resources.
func (p *Platform) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["Close"]++
}

var _ platform.System = (*Platform)(nil)

// Capture.

// Stream is a fake display stream. Frames are pushed by the test with Emit.
type Stream struct {
	Config  platform.StreamConfig
	handler platform.FrameHandler

	mu      sync.Mutex
	started bool
	stopped bool
	seq     uint64

	// StartDelay blocks Start for the given duration.
	StartDelay time.Duration
	// StartErr is returned from Start.
	StartErr error

	stopErr error
}

// CreateStream records the new stream in p.Streams.
func (p *Platform) CreateStream(cfg platform.StreamConfig, handler platform.FrameHandler) (platform.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.enter("CreateStream", cfg.Display, true); err != nil {
		return nil, err
	}
	s := &Stream{Config: cfg, handler: handler}
	if d, ok := p.streamDelays[cfg.Display]; ok {
		s.StartDelay = d
	}
	p.Streams = append(p.Streams, s)
	return s, nil
}

// SetStreamStartDelay makes streams created for id block in Start for d.
func (p *Platform) SetStreamStartDelay(id platform.DisplayID, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamDelays == nil {
		p.streamDelays = make(map[platform.DisplayID]time.Duration)
	}
	p.streamDelays[id] = d
}

// StreamCount returns the number of streams created so far.
func (p *Platform) StreamCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Streams)
}

// LastStream returns the most recently created stream.
func (p *Platform) LastStream() *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Streams) == 0 {
		return nil
	}
	return p.Streams[len(p.Streams)-1]
}

func (s *Stream) Start() error {
	if s.StartDelay > 0 {
		time.Sleep(s.StartDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartErr != nil {
		return s.StartErr
	}
	s.started = true
	return nil
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.stopErr
}

// FailStop makes every later Stop call return err.
func (s *Stream) FailStop(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopErr = err
}

// Started reports whether Start succeeded.
func (s *Stream) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stopped reports whether Stop was called.
func (s *Stream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Emit delivers one frame synchronously to the stream handler. Frames
// emitted after Stop are dropped, matching a real stream.
func (s *Stream) Emit(status platform.FrameStatus, img image.Image) {
	s.mu.Lock()
	if s.stopped || !s.started {
		s.mu.Unlock()
		return
	}
	s.seq++
	f := platform.Frame{Status: status, Seq: s.seq, Time: time.Now(), Image: img}
	s.mu.Unlock()
	s.handler(f)
}

// EmitAlways delivers a frame even after Stop, to exercise late callbacks.
func (s *Stream) EmitAlways(status platform.FrameStatus, img image.Image) {
	s.mu.Lock()
	s.seq++
	f := platform.Frame{Status: status, Seq: s.seq, Time: time.Now(), Image: img}
	s.mu.Unlock()
	s.handler(f)
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var (
	_ platform.Display       = (*Platform)(nil)
	_ platform.LegacyDisplay = (*Platform)(nil)
	_ platform.Capturer      = (*Platform)(nil)
)
