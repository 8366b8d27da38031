package x11

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"github.com/kbinani/screenshot"
)

// StreamEvent classifies one tick of a capture stream.
type StreamEvent int

const (
	// EventFrame carries a new image.
	EventFrame StreamEvent = iota
	// EventUnchanged means the screen did not change since the last frame.
	EventUnchanged
	// EventBlank means the capture failed for this tick.
	EventBlank
	// EventStopped is the last event a stream delivers.
	EventStopped
)

// StreamHandler receives stream events on the stream goroutine.
type StreamHandler func(ev StreamEvent, img image.Image)

var (
	errStreamStarted = errors.New("stream already started")
	errStreamStopped = errors.New("stream stopped")
)

// StreamConfig describes a polling capture of a root-window rectangle.
type StreamConfig struct {
	Rect        image.Rectangle
	Interval    time.Duration
	PixelFormat string
	ShowCursor  bool
	Logger      *slog.Logger
}

// Stream polls the X server for the configured rectangle and delivers
// converted frames to its handler.
type Stream struct {
	c       *Connection
	cfg     StreamConfig
	handler StreamHandler
	capture func(image.Rectangle) (*image.RGBA, error)

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewStream prepares a capture stream. Nothing is captured until Start.
func (c *Connection) NewStream(cfg StreamConfig, handler StreamHandler) *Stream {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Stream{
		c:       c,
		cfg:     cfg,
		handler: handler,
		capture: screenshot.CaptureRect,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start takes one capture to prove the rectangle is readable, then begins
// polling. The first capture is delivered as the first frame.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errStreamStarted
	}
	select {
	case <-s.stop:
		return errStreamStopped
	default:
	}
	first, err := s.grab()
	if err != nil {
		return err
	}
	s.started = true
	go s.loop(first)
	return nil
}

// Stop ends polling and waits for the final EventStopped delivery. A stream
// stopped before Start never begins polling.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	if !s.started {
		return nil
	}
	<-s.done
	return nil
}

func (s *Stream) loop(first *image.RGBA) {
	defer close(s.done)
	defer s.handler(EventStopped, nil)

	prev := first
	s.deliver(first)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		img, err := s.grab()
		if err != nil {
			s.cfg.Logger.Debug("capture tick failed", "error", err)
			s.handler(EventBlank, nil)
			continue
		}
		if bytes.Equal(img.Pix, prev.Pix) {
			s.handler(EventUnchanged, nil)
			continue
		}
		prev = img
		s.deliver(img)
	}
}

func (s *Stream) deliver(img *image.RGBA) {
	out, err := ConvertPixels(img, s.cfg.PixelFormat)
	if err != nil {
		s.handler(EventBlank, nil)
		return
	}
	s.handler(EventFrame, out)
}

func (s *Stream) grab() (*image.RGBA, error) {
	img, err := s.capture(s.cfg.Rect)
	if err != nil {
		return nil, err
	}
	if s.cfg.ShowCursor && s.c != nil && s.c.Ext.XFixes {
		if cur, err := s.c.Cursor(); err == nil {
			overlayCursor(img, s.cfg.Rect, cur)
		}
	}
	return img, nil
}

// overlayCursor composites the cursor onto img, which holds the capture of
// rect in root coordinates.
func overlayCursor(img *image.RGBA, rect image.Rectangle, cur *CursorImage) {
	offset := img.Bounds().Min.Sub(rect.Min)
	at := image.Pt(cur.X, cur.Y).Add(offset)
	dst := cur.Image.Bounds().Sub(cur.Image.Bounds().Min).Add(at)
	draw.Draw(img, dst, cur.Image, cur.Image.Bounds().Min, draw.Over)
}
