// Package capability resolves optional platform subsystems on first use and
// memoizes the outcome for the lifetime of a Registry.
package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/displayctl/internal/status"
)

// Well-known module names.
const (
	LegacyMode = "legacy-mode"
	Brightness = "brightness"
	TrueTone   = "true-tone"
)

// DefaultLoadTimeout bounds a single loader call.
const DefaultLoadTimeout = 5 * time.Second

// State is the load state of a Module.
type State int

const (
	Unloaded State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotRegistered is recorded for names that have no loader.
var ErrNotRegistered = errors.New("capability not registered")

// ErrLoadTimeout is recorded when a loader does not return in time.
var ErrLoadTimeout = errors.New("capability load timed out")

// Loader attempts to load an optional subsystem. The returned value is the
// module handle stored on success.
type Loader func(ctx context.Context) (any, error)

// Module is the cached result of resolving one capability.
type Module struct {
	Name   string
	State  State
	Handle any
	Err    error
}

// Available reports whether the module loaded.
func (m *Module) Available() bool {
	return m != nil && m.State == Loaded
}

type entry struct {
	once   sync.Once
	loader Loader
	module *Module
	loads  int
}

// Registry owns the capability entries of one display handle.
type Registry struct {
	mu          sync.Mutex
	entries     map[string]*entry
	loadTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoadTimeout bounds each loader call. Zero disables the bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Registry) { r.loadTimeout = d }
}

// WithLogger sets the logger used to report load outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:     make(map[string]*entry),
		loadTimeout: DefaultLoadTimeout,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register installs the loader for name. Registering a name that has already
// been resolved has no effect on the cached module.
func (r *Registry) Register(name string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		if e.module == nil {
			e.loader = loader
		}
		return
	}
	r.entries[name] = &entry{loader: loader}
}

func (r *Registry) lookup(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	return e
}

// Resolve returns the module for name, running its loader on the first call.
// Concurrent callers block until that single attempt finishes and then all
// observe the same *Module.
func (r *Registry) Resolve(ctx context.Context, name string) *Module {
	e := r.lookup(name)
	e.once.Do(func() {
		r.mu.Lock()
		loader := e.loader
		e.loads++
		r.mu.Unlock()

		m := &Module{Name: name}
		if loader == nil {
			m.State = Failed
			m.Err = fmt.Errorf("%s: %w", name, ErrNotRegistered)
		} else if h, err := r.load(ctx, loader); err != nil {
			m.State = Failed
			m.Err = fmt.Errorf("load %s: %w", name, err)
		} else {
			m.State = Loaded
			m.Handle = h
		}

		if m.Err != nil {
			r.logger.Warn("capability unavailable", "name", name, "error", m.Err)
		} else {
			r.logger.Debug("capability loaded", "name", name)
		}

		r.mu.Lock()
		e.module = m
		r.mu.Unlock()
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	return e.module
}

// load runs loader detached from the caller's cancellation: the outcome is
// cached for everyone, so only the registry's timeout may fail it.
func (r *Registry) load(ctx context.Context, loader Loader) (any, error) {
	ctx = context.WithoutCancel(ctx)
	if r.loadTimeout <= 0 {
		return loader(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, r.loadTimeout)
	defer cancel()

	type result struct {
		handle any
		err    error
	}
	done := make(chan result, 1)
	go func() {
		h, err := loader(ctx)
		done <- result{h, err}
	}()

	select {
	case res := <-done:
		return res.handle, res.err
	case <-ctx.Done():
		return nil, ErrLoadTimeout
	}
}

// LoadCount reports how many load attempts were made for name.
func (r *Registry) LoadCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		return e.loads
	}
	return 0
}

// Snapshot returns the resolved modules and placeholders for registered but
// unresolved ones, sorted by name.
func (r *Registry) Snapshot() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Module, 0, len(r.entries))
	for name, e := range r.entries {
		if e.module != nil {
			out = append(out, *e.module)
			continue
		}
		out = append(out, Module{Name: name, State: Unloaded})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// As returns the typed handle of a loaded module. A missing, failed or
// mistyped module yields a NoneAvailable error.
func As[T any](m *Module) (T, error) {
	var zero T
	if m == nil {
		return zero, status.New("capability", status.NoneAvailable)
	}
	if m.State != Loaded {
		return zero, status.Wrap(m.Name, status.NoneAvailable, m.Err)
	}
	h, ok := m.Handle.(T)
	if !ok {
		return zero, status.Errorf(m.Name, status.NoneAvailable, "handle is %T", m.Handle)
	}
	return h, nil
}

// Get resolves name and returns its typed handle.
func Get[T any](ctx context.Context, r *Registry, name string) (T, error) {
	return As[T](r.Resolve(ctx, name))
}
