package trace

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultAsyncBuffer is the queue length used by NewAsyncSink when size
// is not positive.
const DefaultAsyncBuffer = 1024

// AsyncSink forwards events to another Sink from a single writer
// goroutine. Append never blocks: when the queue is full the event is
// dropped and counted. Call Close to drain the queue.
type AsyncSink struct {
	next    Sink
	logger  *slog.Logger
	events  chan Event
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncSink starts the writer goroutine. A nil logger means
// slog.Default().
func NewAsyncSink(next Sink, size int, logger *slog.Logger) *AsyncSink {
	if size <= 0 {
		size = DefaultAsyncBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AsyncSink{
		next:   next,
		logger: logger,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *AsyncSink) loop() {
	defer close(s.done)
	for e := range s.events {
		if err := s.next.Append(e); err != nil {
			s.logger.Error("trace sink append failed", "error", err, "step", e.Step, "event", e.Type)
		}
	}
}

// Append queues e. It fails without blocking when the queue is full or
// the sink is closed.
func (s *AsyncSink) Append(e Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("trace: sink closed, step %d dropped", e.Step)
	}
	select {
	case s.events <- e:
		return nil
	default:
		s.dropped.Add(1)
		return fmt.Errorf("trace: sink queue full, step %d dropped", e.Step)
	}
}

// Dropped counts events rejected because the queue was full.
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits until every queued event has
// reached the underlying sink.
func (s *AsyncSink) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	<-s.done
	if n := s.dropped.Load(); n > 0 {
		return fmt.Errorf("trace: %d events dropped", n)
	}
	return nil
}
