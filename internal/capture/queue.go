package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/displayctl/internal/platform"
)

const defaultQueueSize = 2

// frameQueue hands frames from the stream callback to a single writer
// goroutine. When full it drops the oldest frame so the callback never
// blocks.
type frameQueue struct {
	queue chan platform.Frame
	done  chan struct{}
	write func(platform.Frame)

	closeOnce sync.Once
	wg        sync.WaitGroup

	logger      *slog.Logger
	lastDropLog atomic.Int64
	dropped     atomic.Uint64
}

func newFrameQueue(size int, logger *slog.Logger, write func(platform.Frame)) *frameQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	q := &frameQueue{
		queue:  make(chan platform.Frame, size),
		done:   make(chan struct{}),
		write:  write,
		logger: logger,
	}
	q.wg.Add(1)
	go q.loop()
	return q
}

func (q *frameQueue) Enqueue(f platform.Frame) {
	select {
	case <-q.done:
		return
	default:
	}

	select {
	case q.queue <- f:
		return
	default:
	}

	select {
	case <-q.queue:
		q.drop()
	default:
	}

	select {
	case q.queue <- f:
	default:
		q.drop()
	}
}

func (q *frameQueue) drop() {
	total := q.dropped.Add(1)
	if shouldLog(&q.lastDropLog, time.Second) {
		q.logger.Debug("capture frame dropped", "total", total, "queued", len(q.queue))
	}
}

// Close stops the writer and waits for an in-flight write to finish. Frames
// still queued are discarded and counted as dropped.
func (q *frameQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.wg.Wait()
		for {
			select {
			case <-q.queue:
				q.dropped.Add(1)
			default:
				return
			}
		}
	})
}

func (q *frameQueue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *frameQueue) loop() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case f := <-q.queue:
			q.write(f)
		}
	}
}

// shouldLog rate-limits a log line to once per period.
func shouldLog(last *atomic.Int64, period time.Duration) bool {
	now := time.Now().UnixNano()
	for {
		prev := last.Load()
		if prev != 0 && time.Duration(now-prev) < period {
			return false
		}
		if last.CompareAndSwap(prev, now) {
			return true
		}
	}
}
