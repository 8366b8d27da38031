// Package capture runs a display capture stream and writes delivered frames
// to an image file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// DefaultStartTimeout bounds how long Start waits for the stream to confirm.
const DefaultStartTimeout = 3 * time.Second

// PixelFormats are the accepted stream pixel format tags.
var PixelFormats = []string{"420f", "l10r", "BGR", "420v"}

var (
	ErrUnsupportedExtension   = errors.New("unsupported output extension")
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	ErrStartTimeout           = errors.New("stream start timed out")
	ErrAlreadyStarted         = errors.New("session already started")
	ErrStopped                = errors.New("session stopped")
)

// State is the lifecycle state of a Session. It only moves forward.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options describes a capture session.
type Options struct {
	Display          platform.DisplayID
	PixelFormat      string
	Bounds           platform.Rect
	MinimumFrameTime time.Duration
	ShowCursor       bool

	StartTimeout    time.Duration
	QueueSize       int
	StrictExtension bool
	JPEGQuality     int
	Logger          *slog.Logger
}

// Stats counts frames over the life of a session.
type Stats struct {
	Delivered uint64
	Skipped   uint64
	Dropped   uint64
	Written   uint64
	Failed    uint64
	LastWrite time.Time
}

// Session is one run of a capture stream. A stopped session cannot be
// restarted.
type Session struct {
	id     string
	p      platform.Capturer
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	state  atomic.Int32
	path   string
	format Format
	stream platform.Stream
	queue  *frameQueue

	// Held for reading by the frame handler and for writing by Stop, so Stop
	// returns only after every in-flight callback has left.
	handlerMu sync.RWMutex

	firstOnce sync.Once
	first     chan struct{}

	delivered atomic.Uint64
	skipped   atomic.Uint64
	written   atomic.Uint64
	failed    atomic.Uint64
	lastWrite atomic.Int64
	lastErr   atomic.Pointer[error]
}

// NewSession validates opts against the live display set.
func NewSession(p platform.Capturer, opts Options) (*Session, error) {
	const op = "capture.NewSession"
	active, err := p.ActiveDisplays()
	if err != nil {
		return nil, status.Wrap(op, status.InvalidDisplay, err)
	}
	if !slices.Contains(active, opts.Display) {
		return nil, status.Errorf(op, status.InvalidDisplay, "display %d is not active", opts.Display)
	}
	if !slices.Contains(PixelFormats, opts.PixelFormat) {
		return nil, status.Wrap(op, status.IllegalArgument, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, opts.PixelFormat))
	}
	if opts.MinimumFrameTime < 0 {
		return nil, status.Errorf(op, status.IllegalArgument, "negative minimum frame time %s", opts.MinimumFrameTime)
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		p:      p,
		opts:   opts,
		logger: logger.With("session", id, "display", opts.Display),
		first:  make(chan struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Display returns the captured display.
func (s *Session) Display() platform.DisplayID { return s.opts.Display }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Path returns the output path given to Start.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Start validates path, starts the stream and returns once the platform has
// confirmed the start. It does not wait for a frame. The extension check runs
// before any stream resource is created; a rejected path leaves the session
// Idle. Any failure after that point leaves it Stopped. The session lock is
// not held while waiting for confirmation, so Stop may cancel a pending start.
func (s *Session) Start(ctx context.Context, path string) error {
	const op = "capture.Start"
	stream, err := s.open(op, path)
	if err != nil {
		return err
	}

	if err := s.awaitStart(ctx, stream); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if State(s.state.Swap(int32(Stopped))) == Running {
			if terr := s.teardown(); terr != nil {
				s.logger.Warn("capture teardown after failed start", "error", terr)
			}
		}
		return translate(op, err)
	}
	if s.State() != Running {
		return status.Wrap(op, status.Failure, ErrStopped)
	}

	s.logger.Info("capture started", "path", path, "format", s.format, "pixel_format", s.opts.PixelFormat)
	return nil
}

// open checks the session state and path, then creates the stream and moves
// to Running under the session lock.
func (s *Session) open(op, path string) (platform.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case Running:
		return nil, status.Wrap(op, status.Failure, ErrAlreadyStarted)
	case Stopped:
		return nil, status.Wrap(op, status.Failure, ErrStopped)
	}

	format, ok := MatchFormat(path, s.opts.StrictExtension)
	if !ok {
		return nil, status.Wrap(op, status.IllegalArgument, fmt.Errorf("%w: %q", ErrUnsupportedExtension, path))
	}
	s.path, s.format = path, format

	s.queue = newFrameQueue(s.opts.QueueSize, s.logger, s.writeFrame)
	stream, err := s.p.CreateStream(platform.StreamConfig{
		Display:          s.opts.Display,
		PixelFormat:      s.opts.PixelFormat,
		Bounds:           s.opts.Bounds,
		MinimumFrameTime: s.opts.MinimumFrameTime,
		ShowCursor:       s.opts.ShowCursor,
	}, s.handleFrame)
	if err != nil {
		s.abort()
		return nil, translate(op, err)
	}
	s.stream = stream

	// Running before the stream starts so frames delivered during start-up
	// are kept.
	s.state.Store(int32(Running))
	return stream, nil
}

func (s *Session) awaitStart(ctx context.Context, stream platform.Stream) error {
	done := make(chan error, 1)
	go func() { done <- stream.Start() }()

	timer := time.NewTimer(s.opts.StartTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrStartTimeout, s.opts.StartTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// abort releases the queue after a failed stream creation.
func (s *Session) abort() {
	s.state.Store(int32(Stopped))
	if s.queue != nil {
		s.queue.Close()
	}
}

// Stop stops the stream and blocks until no frame callback or file write is
// in progress. It is safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := State(s.state.Swap(int32(Stopped)))
	if prev != Running {
		return nil
	}
	err := s.teardown()
	st := s.stats()
	s.logger.Info("capture stopped", "delivered", st.Delivered, "written", st.Written, "dropped", st.Dropped, "failed", st.Failed)
	return err
}

func (s *Session) teardown() error {
	var err error
	if s.stream != nil {
		if serr := s.stream.Stop(); serr != nil {
			err = translate("capture.Stop", serr)
		}
	}
	// Barrier: wait for callbacks that saw Running to leave.
	s.handlerMu.Lock()
	s.handlerMu.Unlock()
	s.queue.Close()
	return err
}

func (s *Session) handleFrame(f platform.Frame) {
	s.handlerMu.RLock()
	defer s.handlerMu.RUnlock()
	if s.State() != Running {
		return
	}
	s.delivered.Add(1)
	if f.Status != platform.FrameComplete || f.Image == nil {
		s.skipped.Add(1)
		return
	}
	s.queue.Enqueue(f)
}

func (s *Session) writeFrame(f platform.Frame) {
	if err := writeFile(s.path, f.Image, s.format, s.opts.JPEGQuality); err != nil {
		s.failed.Add(1)
		s.lastErr.Store(&err)
		s.logger.Warn("capture write failed", "path", s.path, "seq", f.Seq, "error", err)
		return
	}
	s.written.Add(1)
	s.lastWrite.Store(time.Now().UnixNano())
	s.firstOnce.Do(func() { close(s.first) })
}

// FirstFrame is closed after the first frame has been written.
func (s *Session) FirstFrame() <-chan struct{} {
	return s.first
}

// Wait blocks until the first frame has been written or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.first:
		return nil
	case <-ctx.Done():
		if err := s.LastError(); err != nil {
			return fmt.Errorf("%w (last write error: %v)", ctx.Err(), err)
		}
		return ctx.Err()
	}
}

// LastError returns the most recent write error, if any.
func (s *Session) LastError() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Stats returns a snapshot of the frame counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats()
}

func (s *Session) stats() Stats {
	st := Stats{
		Delivered: s.delivered.Load(),
		Skipped:   s.skipped.Load(),
		Written:   s.written.Load(),
		Failed:    s.failed.Load(),
	}
	if s.queue != nil {
		st.Dropped = s.queue.Dropped()
	}
	if ns := s.lastWrite.Load(); ns != 0 {
		st.LastWrite = time.Unix(0, ns)
	}
	return st
}

// translate maps a stream error to a status error. The stream did not
// start, so a raw status that translates to Success is reported as Failure.
func translate(op string, err error) error {
	var se *status.Error
	if errors.As(err, &se) {
		return err
	}
	code := status.Failure
	var raw *platform.StatusError
	if errors.As(err, &raw) {
		if c := status.Translate(raw.Raw); c != status.Success {
			code = c
		}
	}
	return status.Wrap(op, code, err)
}
