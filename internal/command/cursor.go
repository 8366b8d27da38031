package command

import (
	"context"

	"github.com/1broseidon/displayctl/internal/status"
)

// HideCursor hides the pointer on the display and waits for the change to
// settle.
func (e *Executor) HideCursor(ctx context.Context) error {
	const op = "hideCursor"
	err := e.mutate(op, func() error {
		return e.p.HideCursor(e.h.ID())
	})
	if err != nil {
		return err
	}
	return e.settle.Settle(ctx, CursorWrite)
}

// MoveCursorTo moves the pointer to (x, y) relative to the display origin.
func (e *Executor) MoveCursorTo(ctx context.Context, x, y int) error {
	const op = "moveCursorTo"
	b, err := e.h.Bounds()
	if err != nil {
		return e.translate(op, err)
	}
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return status.Errorf(op, status.IllegalArgument, "point (%d,%d) outside %dx%d", x, y, b.Width, b.Height)
	}
	return e.mutate(op, func() error {
		return e.p.MoveCursor(e.h.ID(), x, y)
	})
}

// PressKey posts one synthetic key-down event for the named key.
func (e *Executor) PressKey(ctx context.Context, name string) error {
	const op = "pressKey"
	sym, ok := e.keys.Resolve(name)
	if !ok {
		return status.Errorf(op, status.IllegalArgument, "unknown key %q", name)
	}
	return e.translate(op, e.p.PostKeyEvent(sym, true))
}

// TapKey posts a key-down followed by a key-up for the named key.
func (e *Executor) TapKey(ctx context.Context, name string) error {
	const op = "tapKey"
	sym, ok := e.keys.Resolve(name)
	if !ok {
		return status.Errorf(op, status.IllegalArgument, "unknown key %q", name)
	}
	if err := e.p.PostKeyEvent(sym, true); err != nil {
		return e.translate(op, err)
	}
	return e.translate(op, e.p.PostKeyEvent(sym, false))
}
