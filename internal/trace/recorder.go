package trace

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/value"
)

// Sequencer hands out step numbers. core.Clock and
// testutil.DeterministicClock both satisfy it.
type Sequencer interface {
	Next() int64
}

// Sink receives every event as it is recorded, e.g. a journal.
type Sink interface {
	Append(e Event) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSequencer sets the step source.
func WithSequencer(s Sequencer) Option {
	return func(r *Recorder) { r.steps = s }
}

// WithSink forwards events to s. Sink errors are logged, not returned.
func WithSink(s Sink) Option {
	return func(r *Recorder) { r.sinks = append(r.sinks, s) }
}

// WithLogger sets the logger for sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithoutBuffer stops the recorder from keeping events in memory; they
// only go to sinks. For long-running processes.
func WithoutBuffer() Option {
	return func(r *Recorder) { r.unbuffered = true }
}

// Recorder implements core.Observer and dispatch.Observer.
type Recorder struct {
	core.NopObserver

	mu         sync.Mutex
	steps      Sequencer
	seq        int64
	events     []Event
	sinks      []Sink
	logger     *slog.Logger
	unbuffered bool
}

// NewRecorder creates a Recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		steps:  core.NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	e.Step = r.steps.Next()
	if e.Seq == 0 {
		e.Seq = r.seq
	}
	if !r.unbuffered {
		r.events = append(r.events, e)
	}
	sinks := r.sinks
	r.mu.Unlock()

	for _, s := range sinks {
		if err := s.Append(e); err != nil {
			r.logger.Error("trace sink append failed", "error", err, "step", e.Step, "event", e.Type)
		}
	}
}

func withValue(e Event, v *value.Value) Event {
	e.ValueKind, e.Value = describe(v)
	return e
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// TickStarted implements core.Observer.
func (r *Recorder) TickStarted(seq int64) {
	r.mu.Lock()
	r.seq = seq
	r.mu.Unlock()
	r.record(Event{Seq: seq, Type: EventTickStart})
}

// TickFinished implements core.Observer.
func (r *Recorder) TickFinished(s core.TickStats) {
	r.record(Event{
		Seq:       s.Seq,
		Type:      EventTickEnd,
		Abilities: s.Abilities,
		Callbacks: s.Callbacks,
		Failures:  s.Failures,
	})
}

// AbilityExecuted implements core.Observer.
func (r *Recorder) AbilityExecuted(seq int64, id uint32, v *value.Value, err error) {
	r.record(withValue(Event{Seq: seq, Type: EventExecute, ID: id, Error: errText(err)}, v))
}

// CallbackExecuted implements core.Observer.
func (r *Recorder) CallbackExecuted(seq int64, v *value.Value) {
	r.record(withValue(Event{Seq: seq, Type: EventCallback}, v))
}

// Rejected implements core.Observer.
func (r *Recorder) Rejected(q core.Queue, err error) {
	r.record(Event{Type: EventRejected, Queue: string(q), Error: errText(err)})
}

// AbilityDispatched implements dispatch.Observer.
func (r *Recorder) AbilityDispatched(_ context.Context, id uint32, name string, depth int, in *value.Value, err error) {
	r.record(withValue(Event{Type: EventAbility, ID: id, Name: name, Depth: depth, Error: errText(err)}, in))
}

// TriggerFired implements dispatch.Observer.
func (r *Recorder) TriggerFired(_ context.Context, id uint32, name string, depth int, v *value.Value, targets int) {
	r.record(withValue(Event{Type: EventTrigger, ID: id, Name: name, Depth: depth, Targets: targets}, v))
}
