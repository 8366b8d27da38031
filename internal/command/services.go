package command

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// SetBrightness sets the backlight level. value must lie in [0, 1].
func (e *Executor) SetBrightness(ctx context.Context, value float64) error {
	const op = "setBrightness"
	if math.IsNaN(value) || value < 0 || value > 1 {
		return status.Errorf(op, status.IllegalArgument, "brightness %v outside [0,1]", value)
	}
	svc, err := capability.Get[platform.BrightnessService](ctx, e.reg, capability.Brightness)
	if err != nil {
		return err
	}
	return e.mutate(op, func() error {
		return svc.SetBrightness(e.h.ID(), value)
	})
}

// Brightness returns the current backlight level in [0, 1].
func (e *Executor) Brightness(ctx context.Context) (float64, error) {
	svc, err := capability.Get[platform.BrightnessService](ctx, e.reg, capability.Brightness)
	if err != nil {
		return 0, err
	}
	v, err := svc.Brightness(e.h.ID())
	if err != nil {
		return 0, e.translate("getBrightness", err)
	}
	return v, nil
}

// BrightnessStatus collects the brightness and colour service state into
// one flat key/value map.
func (e *Executor) BrightnessStatus(ctx context.Context) (map[string]string, error) {
	svc, err := capability.Get[platform.BrightnessService](ctx, e.reg, capability.Brightness)
	if err != nil {
		return nil, err
	}
	info, err := svc.Status()
	if err != nil {
		return nil, e.translate("brightnessStatus", err)
	}
	out := make(map[string]string, len(info)+3)
	for k, v := range info {
		out[k] = v
	}
	out["backend"] = svc.Name()

	if tt, err := capability.Get[platform.TrueToneClient](ctx, e.reg, capability.TrueTone); err == nil {
		out["truetone.available"] = strconv.FormatBool(tt.Available())
		out["truetone.supported"] = strconv.FormatBool(tt.Supported())
		if on, err := tt.Enabled(); err == nil {
			out["truetone.enabled"] = strconv.FormatBool(on)
		}
	}
	return out, nil
}

// SwitchTrueTone toggles ambient colour adaptation. It reports whether the
// state actually changed; an unavailable or unsupported device is a no-op
// that returns false with no error.
func (e *Executor) SwitchTrueTone(ctx context.Context) (bool, error) {
	const op = "switchTrueTone"
	tt, err := capability.Get[platform.TrueToneClient](ctx, e.reg, capability.TrueTone)
	if err != nil {
		return false, err
	}
	if !tt.Available() || !tt.Supported() {
		e.logger.Debug("true tone not available", "available", tt.Available(), "supported", tt.Supported())
		return false, nil
	}

	e.h.Lock()
	defer e.h.Unlock()
	before, err := tt.Enabled()
	if err != nil {
		return false, e.translate(op, err)
	}
	if err := tt.SetEnabled(!before); err != nil {
		return false, e.translate(op, err)
	}
	after, err := tt.Enabled()
	if err != nil {
		return false, e.translate(op, err)
	}
	return after != before, nil
}

// Vendor is the result of VendorNumber.
type Vendor struct {
	Number    uint32
	NoMonitor bool
}

func (v Vendor) String() string {
	if v.NoMonitor {
		return "none"
	}
	return fmt.Sprintf("0x%08x", v.Number)
}

// VendorNumber returns the monitor vendor id. A display with no monitor
// reports NoMonitor; an unidentifiable monitor returns VendorUnknown.
func (e *Executor) VendorNumber(ctx context.Context) (Vendor, error) {
	const op = "vendorNumber"
	n, err := e.p.VendorNumber(e.h.ID())
	if err != nil {
		return Vendor{}, e.translate(op, err)
	}
	switch n {
	case platform.VendorNoMonitor:
		return Vendor{NoMonitor: true}, nil
	case platform.VendorUnknown:
		return Vendor{Number: n}, status.New(op, status.VendorUnknown)
	}
	return Vendor{Number: n}, nil
}

// Windows lists the on-screen windows.
func (e *Executor) Windows(ctx context.Context) ([]platform.Window, error) {
	ws, err := e.p.Windows()
	if err != nil {
		return nil, e.translate("listWindows", err)
	}
	return ws, nil
}

// Window returns the window at index in the Windows list.
func (e *Executor) Window(ctx context.Context, index int) (platform.Window, error) {
	const op = "listWindows"
	ws, err := e.Windows(ctx)
	if err != nil {
		return platform.Window{}, err
	}
	if index < 0 || index >= len(ws) {
		return platform.Window{}, status.Errorf(op, status.IllegalArgument, "window %d out of range [0,%d)", index, len(ws))
	}
	return ws[index], nil
}

// Capabilities returns the registry state for diagnostics.
func (e *Executor) Capabilities() []capability.Module {
	return e.reg.Snapshot()
}
