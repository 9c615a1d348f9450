package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-ptz/internal/log"
)

// Default AsyncSink settings.
const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 2 * time.Second
)

// AsyncSink decouples the control loop from a slow sink.
//
// Batches are queued and delivered in order by a single worker. Send never
// blocks: when the queue is full the batch is dropped and counted. Delivery
// errors are logged and counted, never returned to the caller.
type AsyncSink struct {
	next    Sink
	queue   chan []Command
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsyncSink starts a worker delivering to next. Zero values pick the defaults.
func NewAsyncSink(next Sink, queueSize int, timeout time.Duration) *AsyncSink {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	s := &AsyncSink{
		next:    next,
		queue:   make(chan []Command, queueSize),
		timeout: timeout,
		logger:  log.With("component", "dispatch"),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Send enqueues cmds. It returns ErrQueueFull when the batch was dropped and
// ErrClosed after Close. The context is not used: delivery gets its own timeout.
func (s *AsyncSink) Send(_ context.Context, cmds []Command) error {
	if len(cmds) == 0 {
		return nil
	}
	batch := make([]Command, len(cmds))
	copy(batch, cmds)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	select {
	case s.queue <- batch:
		return nil
	default:
		n := s.dropped.Add(1)
		s.logger.Warn("command queue full, dropping batch", "dropped", n)
		return ErrQueueFull
	}
}

// Dropped returns how many batches were dropped on a full queue.
func (s *AsyncSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Failed returns how many batches the wrapped sink rejected.
func (s *AsyncSink) Failed() uint64 {
	return s.failed.Load()
}

// Close stops accepting batches, delivers what is queued and waits for the
// worker to exit.
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *AsyncSink) run() {
	defer close(s.done)

	for batch := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.next.Send(ctx, batch)
		cancel()

		if err != nil {
			n := s.failed.Add(1)
			s.logger.Warn("command delivery failed", "error", err, "commands", len(batch), "failed", n)
			continue
		}
		s.logger.Debug("commands delivered", "commands", len(batch))
	}
}
