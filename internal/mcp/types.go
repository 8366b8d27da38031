package mcp

import (
	"github.com/1broseidon/displayctl/internal/platform"
)

// DisplayInput selects the display a tool acts on.
type DisplayInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Main     uint32        `json:"main"`
	Displays []DisplayInfo `json:"displays"`
}

// DisplayInfo describes one active display.
type DisplayInfo struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Builtin  bool   `json:"builtin"`
	BitDepth int    `json:"bit_depth"`
	Rotation int    `json:"rotation"`
}

func displayInfo(info platform.Info, rotation int) DisplayInfo {
	return DisplayInfo{
		ID:       uint32(info.ID),
		Name:     info.Name,
		X:        info.Bounds.X,
		Y:        info.Bounds.Y,
		Width:    info.Bounds.Width,
		Height:   info.Bounds.Height,
		Builtin:  info.Builtin,
		BitDepth: info.BitDepth,
		Rotation: rotation,
	}
}

// MoveCursorInput is the input for the move_cursor tool.
type MoveCursorInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	X       int    `json:"x" jsonschema:"required,Horizontal position relative to the display origin"`
	Y       int    `json:"y" jsonschema:"required,Vertical position relative to the display origin"`
}

// KeyInput is the input for the press_key tool.
type KeyInput struct {
	Key string `json:"key" jsonschema:"required,Key name (e.g. ANSI_A, Return, VolumeUp)"`
	Tap bool   `json:"tap,omitempty" jsonschema:"When true, post key-up after key-down (default: key-down only)"`
}

// Mode is one display mode.
type Mode struct {
	Index       int     `json:"index,omitempty"`
	ID          uint32  `json:"id"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	RefreshRate float64 `json:"refresh_rate"`
	BitDepth    int     `json:"bit_depth"`
	Native      bool    `json:"native"`
}

func fromMode(m platform.Mode, index int) Mode {
	return Mode{
		Index:       index,
		ID:          m.ID,
		Width:       m.Width,
		Height:      m.Height,
		RefreshRate: m.RefreshRate,
		BitDepth:    m.BitDepth,
		Native:      m.Native,
	}
}

// ListModesOutput is the output for the list_modes tool.
type ListModesOutput struct {
	Modes []Mode `json:"modes"`
}

// ModeQueryInput is the input for the get_mode tool.
type ModeQueryInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Which   string `json:"which" jsonschema:"required,One of default, native, best"`
}

// ModeQueryOutput is the output for the get_mode tool.
type ModeQueryOutput struct {
	Found bool  `json:"found"`
	Mode  *Mode `json:"mode,omitempty"`
}

// SetModeInput is the input for the set_mode tool.
type SetModeInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Index   int    `json:"index" jsonschema:"required,Mode index counted from 1 in the full mode list"`
}

// RotateInput is the input for the rotate tool.
type RotateInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Angle   int    `json:"angle" jsonschema:"required,Rotation in degrees (multiple of 90)"`
}

// GammaChannel is one channel of a gamma formula.
type GammaChannel struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Gamma float64 `json:"gamma"`
}

// GammaOutput is the output for the get_gamma tool.
type GammaOutput struct {
	Red   GammaChannel `json:"red"`
	Green GammaChannel `json:"green"`
	Blue  GammaChannel `json:"blue"`
}

// SetGammaInput is the input for the set_gamma tool.
type SetGammaInput struct {
	Display uint32  `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Red     float64 `json:"red" jsonschema:"required,Red channel gamma exponent (> 0)"`
	Green   float64 `json:"green" jsonschema:"required,Green channel gamma exponent (> 0)"`
	Blue    float64 `json:"blue" jsonschema:"required,Blue channel gamma exponent (> 0)"`
}

// TransferInput is the input for the set_transfer tool.
type TransferInput struct {
	Display  uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Selector int    `json:"selector" jsonschema:"required,Contrast selector 0-8; 0 restores the identity ramp"`
}

// BrightnessOutput is the output for the get_brightness tool.
type BrightnessOutput struct {
	Brightness float64 `json:"brightness"`
}

// SetBrightnessInput is the input for the set_brightness tool.
type SetBrightnessInput struct {
	Display    uint32  `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Brightness float64 `json:"brightness" jsonschema:"required,Brightness in [0,1]"`
}

// BrightnessStatusOutput is the output for the brightness_status tool.
type BrightnessStatusOutput struct {
	Status map[string]string `json:"status"`
}

// MirrorInput is the input for the set_mirror tool.
type MirrorInput struct {
	Display uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Source  uint32 `json:"source" jsonschema:"required,Display to mirror; 0 turns mirroring off"`
}

// TrueToneOutput is the output for the switch_true_tone tool.
type TrueToneOutput struct {
	Changed bool `json:"changed"`
}

// WindowsInput is the input for the list_windows tool.
type WindowsInput struct {
	Index *int `json:"index,omitempty" jsonschema:"Return only the window at this position in the list"`
}

// Window describes one on-screen window.
type Window struct {
	ID      uint32 `json:"id"`
	PID     int    `json:"pid,omitempty"`
	AppID   string `json:"app_id,omitempty"`
	Title   string `json:"title"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Desktop int    `json:"desktop"`
	Layer   int    `json:"layer"`
	Hidden  bool   `json:"hidden,omitempty"`
}

func fromWindow(w platform.Window) Window {
	return Window{
		ID:      uint32(w.ID),
		PID:     w.PID,
		AppID:   w.AppID,
		Title:   w.Title,
		X:       w.Bounds.X,
		Y:       w.Bounds.Y,
		Width:   w.Bounds.Width,
		Height:  w.Bounds.Height,
		Desktop: w.Desktop,
		Layer:   w.Layer,
		Hidden:  w.Hidden,
	}
}

// WindowsOutput is the output for the list_windows tool.
type WindowsOutput struct {
	Windows []Window `json:"windows"`
}

// PropertiesOutput is the output for the display_properties tool.
type PropertiesOutput struct {
	Properties map[string]bool `json:"properties"`
}

// VendorOutput is the output for the vendor_number tool.
type VendorOutput struct {
	Vendor    string `json:"vendor"`
	Number    uint32 `json:"number"`
	NoMonitor bool   `json:"no_monitor,omitempty"`
}

// Capability is the load state of one optional subsystem.
type Capability struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// CapabilitiesOutput is the output for the capabilities tool.
type CapabilitiesOutput struct {
	Capabilities []Capability `json:"capabilities"`
}

// CaptureStartInput is the input for the capture_start tool.
type CaptureStartInput struct {
	Display     uint32 `json:"display,omitempty" jsonschema:"Display id (default: main display)"`
	Path        string `json:"path" jsonschema:"required,Output file; the extension (jpeg, bmp, png, gif, tiff) picks the encoding. Relative paths resolve under capture.output_dir"`
	PixelFormat string `json:"pixel_format,omitempty" jsonschema:"Stream pixel format: 420f, l10r, BGR or 420v (default from config)"`
	X           int    `json:"x,omitempty" jsonschema:"Capture rectangle origin relative to the display"`
	Y           int    `json:"y,omitempty" jsonschema:"Capture rectangle origin relative to the display"`
	Width       int    `json:"width,omitempty" jsonschema:"Capture rectangle width (default: whole display)"`
	Height      int    `json:"height,omitempty" jsonschema:"Capture rectangle height (default: whole display)"`
	ShowCursor  *bool  `json:"show_cursor,omitempty" jsonschema:"Draw the cursor into frames (default from config)"`
	WaitFrame   int    `json:"wait_frame,omitempty" jsonschema:"Seconds to wait for the first frame to be written (default: 0, do not wait)"`
}

// CaptureSessionInput names a capture session.
type CaptureSessionInput struct {
	Session string `json:"session" jsonschema:"required,Session id returned by capture_start"`
}

// CaptureStatus describes one capture session.
type CaptureStatus struct {
	Session   string `json:"session"`
	Display   uint32 `json:"display"`
	State     string `json:"state"`
	Path      string `json:"path"`
	Delivered uint64 `json:"delivered"`
	Skipped   uint64 `json:"skipped"`
	Dropped   uint64 `json:"dropped"`
	Written   uint64 `json:"written"`
	Failed    uint64 `json:"failed"`
	LastWrite string `json:"last_write,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// CaptureListOutput is the output for the capture_list tool.
type CaptureListOutput struct {
	Sessions []CaptureStatus `json:"sessions"`
}

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}
