package platform

import (
	"fmt"
	"image"
	"image/color"
	"time"
)

// DisplayID is the platform-assigned identifier of one physical display.
type DisplayID uint32

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Image converts r into an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Info is a live snapshot of one display's attributes.
type Info struct {
	ID       DisplayID
	Name     string
	Bounds   Rect
	Builtin  bool
	BitDepth int
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID
	PID     int
	AppID   string
	Title   string
	Bounds  Rect
	Desktop int
	Layer   int
	Hidden  bool
}

// GammaChannel holds the coefficients of the gamma transfer formula for one
// colour channel: out = min + (max-min) * in^gamma.
type GammaChannel struct {
	Min   float64
	Max   float64
	Gamma float64
}

// GammaFormula is the formula form of a gamma curve.
type GammaFormula struct {
	Red   GammaChannel
	Green GammaChannel
	Blue  GammaChannel
}

// TransferTableSize is the number of entries per channel in a byte table.
const TransferTableSize = 256

// TransferTable is the lookup-table form of a gamma curve.
type TransferTable struct {
	Red   [TransferTableSize]uint8
	Green [TransferTableSize]uint8
	Blue  [TransferTableSize]uint8
}

// Mode describes one display mode.
type Mode struct {
	ID          uint32
	Width       int
	Height      int
	RefreshRate float64
	BitDepth    int
	Native      bool
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d@%.2fHz", m.Width, m.Height, m.RefreshRate)
}

// StatusError carries a raw status value reported by the display API.
type StatusError struct {
	Op  string
	Raw int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: raw status %d", e.Op, e.Raw)
}

// Configuration is an open display-reconfiguration transaction. Either
// Complete or Cancel must be called exactly once.
type Configuration interface {
	ConfigureMirror(display, source DisplayID) error
	Complete() error
	Cancel() error
}

// Display abstracts the always-present display API.
type Display interface {
	ActiveDisplays() ([]DisplayID, error)
	MainDisplay() (DisplayID, error)
	DisplayInfo(id DisplayID) (Info, error)
	Rotation(id DisplayID) (float64, error)
	VendorNumber(id DisplayID) (uint32, error)

	HideCursor(id DisplayID) error
	MoveCursor(id DisplayID, x, y int) error
	PostKeyEvent(keysym string, down bool) error

	GammaFormula(id DisplayID) (GammaFormula, error)
	SetGammaFormula(id DisplayID, f GammaFormula) error
	SetTransferTable(id DisplayID, t *TransferTable) error
	CanSetPalette(id DisplayID) (bool, error)
	SetPalette(id DisplayID, palette color.Palette) error

	Modes(id DisplayID) ([]Mode, error)
	BestMode(id DisplayID, bitDepth, width, height int, refresh float64) (Mode, error)

	BeginConfiguration() (Configuration, error)
	Windows() ([]Window, error)
}

// Vendor sentinels returned by VendorNumber.
const (
	VendorNoMonitor uint32 = 0xFFFFFFFF
	VendorUnknown   uint32 = 0x756E6B6E // 'unkn'
)

// Predicates is the fixed set of boolean display properties the legacy mode
// subsystem reports.
type Predicates struct {
	BuiltIn              bool
	Main                 bool
	Mirrored             bool
	Connected            bool
	Rotated              bool
	Interlaced           bool
	HasBacklight         bool
	HasPreferredMode     bool
	CanChangeOrientation bool
}

// LegacyDisplay is the optional mode/rotation control subsystem.
type LegacyDisplay interface {
	AllModes(id DisplayID) ([]Mode, error)
	SetMode(id DisplayID, m Mode) error
	DefaultMode(id DisplayID) (Mode, bool, error)
	CanChangeOrientation(id DisplayID) (bool, error)
	SetOrientation(id DisplayID, degrees int) error
	Predicates(id DisplayID) (Predicates, error)
}

// BrightnessService is the optional system brightness subsystem. Values are
// in the range [0, 1].
type BrightnessService interface {
	Name() string
	Brightness(id DisplayID) (float64, error)
	SetBrightness(id DisplayID, value float64) error
	Status() (map[string]string, error)
}

// BacklightControl exposes per-output backlight levels.
type BacklightControl interface {
	Backlight(id DisplayID) (float64, error)
	SetBacklight(id DisplayID, value float64) error
}

// TrueToneClient is the optional ambient colour adaptation subsystem.
type TrueToneClient interface {
	Available() bool
	Supported() bool
	Enabled() (bool, error)
	SetEnabled(enabled bool) error
}

// FrameStatus is the status delivered with each captured frame.
type FrameStatus int

const (
	FrameComplete FrameStatus = iota
	FrameIdle
	FrameBlank
	FrameStopped
)

func (s FrameStatus) String() string {
	switch s {
	case FrameComplete:
		return "complete"
	case FrameIdle:
		return "idle"
	case FrameBlank:
		return "blank"
	case FrameStopped:
		return "stopped"
	default:
		return fmt.Sprintf("FrameStatus(%d)", int(s))
	}
}

// Frame is one surface delivered by a display stream.
type Frame struct {
	Status FrameStatus
	Seq    uint64
	Time   time.Time
	Image  image.Image
}

// FrameHandler receives frames on the stream's delivery goroutine.
type FrameHandler func(Frame)

// StreamConfig describes a display stream to create.
type StreamConfig struct {
	Display          DisplayID
	PixelFormat      string
	Bounds           Rect
	MinimumFrameTime time.Duration
	ShowCursor       bool
}

// Stream is an asynchronous display capture stream.
type Stream interface {
	Start() error
	Stop() error
}

// Capturer creates display capture streams.
type Capturer interface {
	ActiveDisplays() ([]DisplayID, error)
	CreateStream(cfg StreamConfig, handler FrameHandler) (Stream, error)
}

// System is a full display backend.
type System interface {
	Display
	LegacyDisplay
	Capturer
	BacklightControl
	Close()
}
