// Package system wires a display backend, the optional-subsystem registry
// and configuration into executors and capture sessions.
package system

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/1broseidon/displayctl/internal/brightness"
	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/capture"
	"github.com/1broseidon/displayctl/internal/command"
	"github.com/1broseidon/displayctl/internal/config"
	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/runtimepath"
	"github.com/1broseidon/displayctl/internal/sessionbus"
	"github.com/1broseidon/displayctl/internal/truetone"
)

// System is one connected display backend plus its capability registry.
type System struct {
	Backend  platform.System
	Registry *capability.Registry
	Config   *config.Config
	Logger   *slog.Logger

	bus sessionbus.Bus

	handlesMu sync.Mutex
	handles   map[platform.DisplayID]*display.Handle
}

// Open connects the platform backend and the session bus. A missing session
// bus only disables the services behind it.
func Open(cfg *config.Config, logger *slog.Logger) (*System, error) {
	display, xauthority, err := X11Env(os.Environ(), cfg)
	if err != nil {
		return nil, err
	}
	if xauthority != "" {
		os.Setenv("XAUTHORITY", xauthority)
	}
	// The capture library opens its own connection from $DISPLAY.
	os.Setenv("DISPLAY", display)
	backend, err := platform.Open(display, logger)
	if err != nil {
		return nil, err
	}

	var bus sessionbus.Bus
	if conn, err := sessionbus.Session(); err == nil {
		bus = conn
	} else {
		logger.Debug("session bus unavailable", "error", err)
	}
	return New(backend, bus, cfg, logger), nil
}

// New wires an existing backend. bus may be nil.
func New(backend platform.System, bus sessionbus.Bus, cfg *config.Config, logger *slog.Logger) *System {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &System{
		Backend: backend,
		Config:  cfg,
		Logger:  logger,
		bus:     bus,
		handles: make(map[platform.DisplayID]*display.Handle),
		Registry: capability.NewRegistry(
			capability.WithLoadTimeout(cfg.CapabilityLoadTimeout),
			capability.WithLogger(logger),
		),
	}
	s.registerCapabilities()
	return s
}

func (s *System) registerCapabilities() {
	s.Registry.Register(capability.LegacyMode, func(context.Context) (any, error) {
		return platform.LegacyDisplay(s.Backend), nil
	})
	s.Registry.Register(capability.Brightness, func(context.Context) (any, error) {
		return brightness.Probe(s.bus, s.Backend, s.Logger)
	})
	s.Registry.Register(capability.TrueTone, func(context.Context) (any, error) {
		if s.bus == nil {
			return nil, fmt.Errorf("true tone: no session bus")
		}
		return platform.TrueToneClient(truetone.New(s.bus, s.Logger)), nil
	})
}

// Close releases the backend.
func (s *System) Close() {
	s.Backend.Close()
}

// Handle returns the handle on id, or on the main display when id is zero.
// The display is validated on every call, but one handle per id is kept so
// every executor on a display shares its lock.
func (s *System) Handle(id platform.DisplayID) (*display.Handle, error) {
	var opts []display.Option
	if s.Config.RequireBuiltin {
		opts = append(opts, display.RequireBuiltin(true))
	}
	var (
		fresh *display.Handle
		err   error
	)
	if id == 0 {
		fresh, err = display.Main(s.Backend, opts...)
	} else {
		fresh, err = display.New(s.Backend, id, opts...)
	}

	s.handlesMu.Lock()
	defer s.handlesMu.Unlock()
	if err != nil {
		if id != 0 {
			delete(s.handles, id)
		}
		return nil, err
	}
	if h, ok := s.handles[fresh.ID()]; ok {
		return h, nil
	}
	s.handles[fresh.ID()] = fresh
	return fresh, nil
}

// Executor returns an executor for display id (zero selects the main display).
func (s *System) Executor(id platform.DisplayID) (*command.Executor, error) {
	h, err := s.Handle(id)
	if err != nil {
		return nil, err
	}
	return command.New(h, s.Registry,
		command.WithSettleDelay(command.FixedSettle{
			Cursor: s.Config.SettleDelay.Cursor,
			Gamma:  s.Config.SettleDelay.Gamma,
		}),
		command.WithTranslator(s.Config.Translator()),
		command.WithLogger(s.Logger.With("display", h.ID())),
	), nil
}

// CaptureRequest overrides the configured capture defaults for one session.
type CaptureRequest struct {
	Display     platform.DisplayID
	PixelFormat string
	Bounds      platform.Rect
	ShowCursor  *bool
}

// NewCaptureSession prepares a session using the capture config. A zero
// display selects the main display.
func (s *System) NewCaptureSession(req CaptureRequest) (*capture.Session, error) {
	id := req.Display
	if id == 0 {
		h, err := s.Handle(0)
		if err != nil {
			return nil, err
		}
		id = h.ID()
	}
	c := s.Config.Capture
	opts := capture.Options{
		Display:          id,
		PixelFormat:      c.PixelFormat,
		Bounds:           req.Bounds,
		MinimumFrameTime: c.MinimumFrameTime,
		ShowCursor:       c.ShowCursor,
		StartTimeout:     c.StartTimeout,
		QueueSize:        c.QueueSize,
		StrictExtension:  c.StrictExtension,
		JPEGQuality:      c.JPEGQuality,
		Logger:           s.Logger,
	}
	if req.PixelFormat != "" {
		opts.PixelFormat = req.PixelFormat
	}
	if req.ShowCursor != nil {
		opts.ShowCursor = *req.ShowCursor
	}
	return capture.NewSession(s.Backend, opts)
}

// CapturePath resolves a capture output name against capture.output_dir.
func (s *System) CapturePath(name string) (string, error) {
	return runtimepath.CapturePath(s.Config.Capture.OutputDir, name)
}
