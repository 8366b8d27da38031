// Package display identifies and validates one physical display.
package display

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// ErrInvalidDisplay matches construction failures with errors.Is.
var ErrInvalidDisplay = status.ErrInvalidDisplay

// Handle refers to one display id. Attribute queries re-read the platform
// on every call; nothing but the id is cached.
type Handle struct {
	p  platform.Display
	id platform.DisplayID
	mu sync.Mutex
}

// Option adjusts handle construction.
type Option func(*options)

type options struct {
	requireBuiltin *bool
}

// RequireBuiltin makes construction fail unless the display's live builtin
// flag equals want.
func RequireBuiltin(want bool) Option {
	return func(o *options) { o.requireBuiltin = &want }
}

// New validates id against the live active-display set.
func New(p platform.Display, id platform.DisplayID, opts ...Option) (*Handle, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	const op = "display.New"
	active, err := p.ActiveDisplays()
	if err != nil {
		return nil, status.Wrap(op, status.InvalidDisplay, fmt.Errorf("list active displays: %w", err))
	}
	if !slices.Contains(active, id) {
		return nil, status.Errorf(op, status.InvalidDisplay, "display %d is not active", id)
	}

	if o.requireBuiltin != nil {
		info, err := p.DisplayInfo(id)
		if err != nil {
			return nil, status.Wrap(op, status.InvalidDisplay, err)
		}
		if info.Builtin != *o.requireBuiltin {
			return nil, status.Errorf(op, status.InvalidDisplay, "display %d builtin=%t, want %t", id, info.Builtin, *o.requireBuiltin)
		}
	}

	return &Handle{p: p, id: id}, nil
}

// Main returns a handle for the platform's primary display.
func Main(p platform.Display, opts ...Option) (*Handle, error) {
	id, err := p.MainDisplay()
	if err != nil {
		return nil, status.Wrap("display.Main", status.InvalidDisplay, err)
	}
	return New(p, id, opts...)
}

// ID returns the display id.
func (h *Handle) ID() platform.DisplayID {
	return h.id
}

// Platform returns the display API the handle was built on.
func (h *Handle) Platform() platform.Display {
	return h.p
}

// Info re-reads every attribute of the display.
func (h *Handle) Info() (platform.Info, error) {
	return h.p.DisplayInfo(h.id)
}

// Builtin reports whether the display is the machine's internal panel.
func (h *Handle) Builtin() (bool, error) {
	info, err := h.p.DisplayInfo(h.id)
	if err != nil {
		return false, err
	}
	return info.Builtin, nil
}

// Bounds returns the current bounds of the display.
func (h *Handle) Bounds() (platform.Rect, error) {
	info, err := h.p.DisplayInfo(h.id)
	if err != nil {
		return platform.Rect{}, err
	}
	return info.Bounds, nil
}

// BitDepth returns the display's bits per pixel.
func (h *Handle) BitDepth() (int, error) {
	info, err := h.p.DisplayInfo(h.id)
	if err != nil {
		return 0, err
	}
	return info.BitDepth, nil
}

// IsDisplay reports whether the id is still in the active set.
func (h *Handle) IsDisplay() bool {
	return h.Revalidate() == nil
}

// Revalidate re-checks active-set membership. A display that has gone away
// reports InvalidDisplay.
func (h *Handle) Revalidate() error {
	active, err := h.p.ActiveDisplays()
	if err != nil {
		return status.Wrap("display.Revalidate", status.InvalidDisplay, err)
	}
	if !slices.Contains(active, h.id) {
		return status.Errorf("display.Revalidate", status.InvalidDisplay, "display %d is no longer active", h.id)
	}
	return nil
}

// Lock serializes mutating operations on the display within this process.
func (h *Handle) Lock() { h.mu.Lock() }

// Unlock releases the lock taken by Lock.
func (h *Handle) Unlock() { h.mu.Unlock() }

func (h *Handle) String() string {
	return fmt.Sprintf("display(%d)", h.id)
}

// IsInvalid reports whether err is a construction or revalidation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidDisplay)
}
