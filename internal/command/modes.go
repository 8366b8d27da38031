package command

import (
	"context"
	"math"
	"slices"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// SetDisplayMode switches the display to mode index, counted from 1 in the
// legacy mode list.
func (e *Executor) SetDisplayMode(ctx context.Context, index int) error {
	const op = "setDisplayMode"
	legacy, err := e.legacy(ctx)
	if err != nil {
		return err
	}
	modes, err := legacy.AllModes(e.h.ID())
	if err != nil {
		return e.translate(op, err)
	}
	if index < 1 || index > len(modes) {
		return status.Errorf(op, status.IllegalArgument, "mode %d out of range [1,%d]", index, len(modes))
	}
	mode := modes[index-1]
	return e.mutate(op, func() error {
		return legacy.SetMode(e.h.ID(), mode)
	})
}

// DefaultMode returns the device's default mode.
func (e *Executor) DefaultMode(ctx context.Context) (platform.Mode, error) {
	const op = "defaultMode"
	legacy, err := e.legacy(ctx)
	if err != nil {
		return platform.Mode{}, err
	}
	m, ok, err := legacy.DefaultMode(e.h.ID())
	if err != nil {
		return platform.Mode{}, e.translate(op, err)
	}
	if !ok {
		return platform.Mode{}, status.Errorf(op, status.NoneAvailable, "display %d reports no default mode", e.h.ID())
	}
	return m, nil
}

// SetRotation rotates the display to angle degrees. The angle must be a
// multiple of 90 and the device must report itself rotation-capable.
func (e *Executor) SetRotation(ctx context.Context, angle int) error {
	const op = "setRotation"
	if angle%90 != 0 {
		return status.Errorf(op, status.IllegalArgument, "angle %d is not a multiple of 90", angle)
	}
	legacy, err := e.legacy(ctx)
	if err != nil {
		return err
	}
	can, err := legacy.CanChangeOrientation(e.h.ID())
	if err != nil {
		return e.translate(op, err)
	}
	if !can {
		return status.Errorf(op, status.Unsupported, "display %d cannot change orientation", e.h.ID())
	}
	return e.mutate(op, func() error {
		return legacy.SetOrientation(e.h.ID(), angle)
	})
}

// RotationDegrees returns the current rotation in whole degrees.
func (e *Executor) RotationDegrees(ctx context.Context) (int, error) {
	r, err := e.p.Rotation(e.h.ID())
	if err != nil {
		return 0, e.translate("rotationDegrees", err)
	}
	return int(math.Round(r)), nil
}

// SetMirror makes the display mirror source inside one reconfiguration
// transaction. Source 0 turns mirroring off. Any failure before commit
// cancels the transaction so no partial configuration is applied.
func (e *Executor) SetMirror(ctx context.Context, source platform.DisplayID) error {
	const op = "setMirror"
	if source == e.h.ID() {
		return status.Errorf(op, status.IllegalArgument, "display %d cannot mirror itself", source)
	}
	if source != 0 {
		active, err := e.p.ActiveDisplays()
		if err != nil {
			return e.translate(op, err)
		}
		if !slices.Contains(active, source) {
			return status.Errorf(op, status.IllegalArgument, "mirror source %d is not active", source)
		}
	}

	return e.mutate(op, func() error {
		cfg, err := e.p.BeginConfiguration()
		if err != nil {
			return err
		}
		if err := cfg.ConfigureMirror(e.h.ID(), source); err != nil {
			if cerr := cfg.Cancel(); cerr != nil {
				e.logger.Warn("cancel display configuration", "error", cerr)
			}
			return err
		}
		return cfg.Complete()
	})
}

// NativeMode returns the first mode flagged native. Finding none is not an
// error. The bool result reports whether a mode was found.
func (e *Executor) NativeMode(ctx context.Context) (platform.Mode, bool, error) {
	modes, err := e.p.Modes(e.h.ID())
	if err != nil {
		return platform.Mode{}, false, e.translate("retainNativeMode", err)
	}
	for _, m := range modes {
		if m.Native {
			return m, true, nil
		}
	}
	return platform.Mode{}, false, nil
}

// Modes lists the modes the display supports.
func (e *Executor) Modes(ctx context.Context) ([]platform.Mode, error) {
	modes, err := e.p.Modes(e.h.ID())
	if err != nil {
		return nil, e.translate("enumerateModes", err)
	}
	return modes, nil
}

// BestMode returns the mode closest to the display's current depth and size.
func (e *Executor) BestMode(ctx context.Context) (platform.Mode, error) {
	const op = "bestMode"
	info, err := e.h.Info()
	if err != nil {
		return platform.Mode{}, e.translate(op, err)
	}
	m, err := e.p.BestMode(e.h.ID(), info.BitDepth, info.Bounds.Width, info.Bounds.Height, 0)
	if err != nil {
		return platform.Mode{}, e.translate(op, err)
	}
	return m, nil
}
