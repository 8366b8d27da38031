// Package command implements the display operations run against a handle.
//
// Every operation returns an error carrying a status.Code (nil is Success).
// Raw platform statuses are translated through a status.Translator, optional
// subsystems are reached through a capability.Registry, and mutating
// operations are serialized on the handle.
package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/keymap"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// Write identifies the kind of hardware write a settle delay follows.
type Write int

const (
	CursorWrite Write = iota
	GammaWrite
)

// SettleDelay waits for an asynchronous hardware write to take effect.
type SettleDelay interface {
	Settle(ctx context.Context, w Write) error
}

// FixedSettle sleeps for a fixed duration per write kind.
type FixedSettle struct {
	Cursor time.Duration
	Gamma  time.Duration
}

// DefaultSettle matches the timing the hardware needs between repeated calls.
var DefaultSettle = FixedSettle{Cursor: 50 * time.Millisecond, Gamma: 20 * time.Millisecond}

func (s FixedSettle) Settle(ctx context.Context, w Write) error {
	d := s.Gamma
	if w == CursorWrite {
		d = s.Cursor
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoSettle returns immediately.
type NoSettle struct{}

func (NoSettle) Settle(context.Context, Write) error { return nil }

// Executor runs operations against one display handle.
type Executor struct {
	h          *display.Handle
	p          platform.Display
	reg        *capability.Registry
	settle     SettleDelay
	translator status.Translator
	keys       *keymap.Keymap
	logger     *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSettleDelay replaces the settle policy.
func WithSettleDelay(s SettleDelay) Option {
	return func(e *Executor) {
		if s != nil {
			e.settle = s
		}
	}
}

// WithTranslator replaces the raw status translator.
func WithTranslator(t status.Translator) Option {
	return func(e *Executor) { e.translator = t }
}

// WithKeymap replaces the key name table.
func WithKeymap(k *keymap.Keymap) Option {
	return func(e *Executor) {
		if k != nil {
			e.keys = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an executor for h. The registry supplies optional subsystems;
// a nil registry means none are available.
func New(h *display.Handle, reg *capability.Registry, opts ...Option) *Executor {
	if reg == nil {
		reg = capability.NewRegistry()
	}
	e := &Executor{
		h:          h,
		p:          h.Platform(),
		reg:        reg,
		settle:     DefaultSettle,
		translator: status.DefaultTranslator,
		keys:       keymap.Default(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle returns the display handle.
func (e *Executor) Handle() *display.Handle {
	return e.h
}

// Registry returns the capability registry.
func (e *Executor) Registry() *capability.Registry {
	return e.reg
}

// translate converts a platform error into a status error. A raw status the
// translator maps to Success yields nil.
func (e *Executor) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *status.Error
	if errors.As(err, &se) {
		return err
	}
	var raw *platform.StatusError
	if errors.As(err, &raw) {
		if !e.translator.Known(raw.Raw) {
			e.logger.Warn("unrecognized platform status", "op", op, "raw", raw.Raw, "fallback", e.translator.Fallback)
		}
		return status.Wrap(op, e.translator.Translate(raw.Raw), err)
	}
	return status.Wrap(op, status.Failure, err)
}

// mutate runs fn under the handle lock after revalidating the display.
func (e *Executor) mutate(op string, fn func() error) error {
	e.h.Lock()
	defer e.h.Unlock()
	if err := e.h.Revalidate(); err != nil {
		return status.Wrap(op, status.Failure, err)
	}
	err := e.translate(op, fn())
	if err != nil {
		e.logger.Debug("display write failed", "op", op, "display", e.h.ID(), "error", err)
	} else {
		e.logger.Debug("display write", "op", op, "display", e.h.ID())
	}
	return err
}

func (e *Executor) legacy(ctx context.Context) (platform.LegacyDisplay, error) {
	return capability.Get[platform.LegacyDisplay](ctx, e.reg, capability.LegacyMode)
}
