package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/atmo/internal/ring"
	"github.com/roach88/atmo/internal/value"
)

// Default queue capacities.
const (
	DefaultAbilityCapacity  = 10
	DefaultCallbackCapacity = 10
	DefaultTickCapacity     = 8
)

// Dispatcher runs an ability by ID. dispatch.Registry implements it.
type Dispatcher interface {
	DispatchAbility(ctx context.Context, id uint32, v *value.Value) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, id uint32, v *value.Value) error

// DispatchAbility calls f.
func (f DispatcherFunc) DispatchAbility(ctx context.Context, id uint32, v *value.Value) error {
	return f(ctx, id, v)
}

// Callback is a queued or per-tick function. Tick callbacks receive a nil
// value.
type Callback func(ctx context.Context, v *value.Value)

// SetupFunc runs during Init. It may enqueue work.
type SetupFunc func(ctx context.Context, r *Runtime) error

// AbilityEntry is one pending ability execution.
type AbilityEntry struct {
	AbilityID uint32
	Value     value.Value
}

// CallbackEntry is one pending callback execution.
type CallbackEntry struct {
	Callback Callback
	Value    value.Value
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithAbilityCapacity sets the ability queue bound.
func WithAbilityCapacity(n int) Option {
	return func(r *Runtime) { r.abilityCap = n }
}

// WithCallbackCapacity sets the callback queue bound.
func WithCallbackCapacity(n int) Option {
	return func(r *Runtime) { r.callbackCap = n }
}

// WithTickCapacity sets the maximum number of tick callbacks.
func WithTickCapacity(n int) Option {
	return func(r *Runtime) { r.tickCap = n }
}

// WithStaticBuffers backs the queues with storage embedded in the Runtime
// instead of separate allocations. Capacities may not exceed the defaults.
// It is the default in atmo_static builds.
func WithStaticBuffers(on bool) Option {
	return func(r *Runtime) { r.static = on }
}

// WithAsyncTick makes every successful enqueue call Platform.SendTickEvent
// and wake Run.
func WithAsyncTick(on bool) Option {
	return func(r *Runtime) { r.async = on }
}

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Runtime) { r.observers = append(r.observers, o) }
}

// WithStaticSetup sets the application's static setup hook.
func WithStaticSetup(fn SetupFunc) Option {
	return func(r *Runtime) { r.staticSetup = fn }
}

// WithSetup sets the one-time application setup hook.
func WithSetup(fn SetupFunc) Option {
	return func(r *Runtime) { r.setup = fn }
}

// WithRunIDGenerator sets the run ID source.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(r *Runtime) { r.runIDs = g }
}

// WithClock sets the tick clock, e.g. to resume numbering.
func WithClock(c *Clock) Option {
	return func(r *Runtime) { r.clock = c }
}

// Runtime owns the ability, callback and tick queues.
type Runtime struct {
	platform   Platform
	dispatcher Dispatcher
	logger     *slog.Logger
	observers  observers
	clock      *Clock
	runIDs     RunIDGenerator
	runID      string

	abilityCap  int
	callbackCap int
	tickCap     int
	static      bool
	async       bool

	staticSetup SetupFunc
	setup       SetupFunc

	abilities *ring.Buffer[AbilityEntry]
	callbacks *ring.Buffer[CallbackEntry]
	ticks     *ring.Buffer[Callback]

	// Storage for WithStaticBuffers.
	abilityStore  [DefaultAbilityCapacity]AbilityEntry
	callbackStore [DefaultCallbackCapacity]CallbackEntry
	tickStore     [DefaultTickCapacity]Callback

	tickScratch []Callback
	wake        chan struct{}
}

// New creates a Runtime. Queues exist as soon as New returns, so hooks and
// producers may enqueue before Init.
func New(p Platform, d Dispatcher, opts ...Option) (*Runtime, error) {
	if p == nil {
		return nil, fmt.Errorf("core: nil platform")
	}
	if d == nil {
		return nil, fmt.Errorf("core: nil dispatcher")
	}

	r := &Runtime{
		platform:    p,
		dispatcher:  d,
		logger:      slog.Default(),
		clock:       NewClock(),
		runIDs:      UUIDv7Generator{},
		abilityCap:  DefaultAbilityCapacity,
		callbackCap: DefaultCallbackCapacity,
		tickCap:     DefaultTickCapacity,
		static:      value.BuildFeatures().StaticSize > 0,
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.buildQueues(); err != nil {
		return nil, err
	}
	r.runID = r.runIDs.Generate()
	r.tickScratch = make([]Callback, 0, r.tickCap)
	return r, nil
}

// buildQueues creates the rings without free funcs: every Add* rejects
// before Push on a full ring, so nothing is ever evicted.
func (r *Runtime) buildQueues() error {
	var err error
	if r.static {
		if r.abilityCap > len(r.abilityStore) || r.callbackCap > len(r.callbackStore) || r.tickCap > len(r.tickStore) {
			return fmt.Errorf("core: static buffers hold at most %d/%d/%d entries, got %d/%d/%d",
				len(r.abilityStore), len(r.callbackStore), len(r.tickStore),
				r.abilityCap, r.callbackCap, r.tickCap)
		}
		if r.abilityCap <= 0 || r.callbackCap <= 0 || r.tickCap <= 0 {
			return fmt.Errorf("core: queue capacities must be positive")
		}
		r.abilities, _ = ring.NewWithBuffer(r.abilityStore[:r.abilityCap], nil)
		r.callbacks, _ = ring.NewWithBuffer(r.callbackStore[:r.callbackCap], nil)
		r.ticks, _ = ring.NewWithBuffer(r.tickStore[:r.tickCap], nil)
		return nil
	}

	if r.abilities, err = ring.New[AbilityEntry](r.abilityCap, nil); err != nil {
		return fmt.Errorf("core: ability queue: %w", err)
	}
	if r.callbacks, err = ring.New[CallbackEntry](r.callbackCap, nil); err != nil {
		return fmt.Errorf("core: callback queue: %w", err)
	}
	if r.ticks, err = ring.New[Callback](r.tickCap, nil); err != nil {
		return fmt.Errorf("core: tick list: %w", err)
	}
	return nil
}

// RunID identifies this Runtime instance.
func (r *Runtime) RunID() string { return r.runID }

// Init brings the platform and application up: platform init, variant
// setup, static setup, setup, then platform post-init. It stops at the
// first error.
func (r *Runtime) Init(ctx context.Context) error {
	r.logger.Info("runtime init",
		"run_id", r.runID,
		"ability_capacity", r.abilityCap,
		"callback_capacity", r.callbackCap,
		"tick_capacity", r.tickCap,
		"static", r.static,
		"async_tick", r.async)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"platform init", r.platform.Init},
		{"variant setup", r.platform.VariantSetup},
		{"static setup", r.hook(r.staticSetup)},
		{"setup", r.hook(r.setup)},
		{"platform post-init", r.platform.PostInit},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (r *Runtime) hook(fn SetupFunc) func(context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return nil
		}
		return fn(ctx, r)
	}
}

// AddTickCallback subscribes cb to every Tick. Subscriptions are never
// evicted; a full list is a CapacityError.
func (r *Runtime) AddTickCallback(cb Callback) error {
	if cb == nil {
		return fmt.Errorf("core: nil tick callback")
	}
	r.platform.Lock()
	if r.ticks.Full() {
		r.platform.Unlock()
		return r.reject(QueueTick, r.tickCap)
	}
	r.ticks.Push(cb)
	depth := r.ticks.Len()
	r.platform.Unlock()

	r.observers.enqueued(QueueTick, depth)
	return nil
}

// AddAbilityExecute queues ability id with a deep copy of v (Void when v is
// nil). A full queue is a CapacityError and nothing is queued.
func (r *Runtime) AddAbilityExecute(id uint32, v *value.Value) error {
	entry := AbilityEntry{AbilityID: id}
	if err := copyValue(&entry.Value, v); err != nil {
		return err
	}

	r.platform.Lock()
	if r.abilities.Full() {
		r.platform.Unlock()
		entry.Value.Free()
		return r.reject(QueueAbility, r.abilityCap)
	}
	r.abilities.Push(entry)
	depth := r.abilities.Len()
	r.platform.Unlock()

	r.observers.enqueued(QueueAbility, depth)
	r.signal()
	return nil
}

// AddCallbackExecute queues cb with a deep copy of v (Void when v is nil).
// A full queue is a CapacityError and nothing is queued.
func (r *Runtime) AddCallbackExecute(cb Callback, v *value.Value) error {
	if cb == nil {
		return fmt.Errorf("core: nil callback")
	}
	entry := CallbackEntry{Callback: cb}
	if err := copyValue(&entry.Value, v); err != nil {
		return err
	}

	r.platform.Lock()
	if r.callbacks.Full() {
		r.platform.Unlock()
		entry.Value.Free()
		return r.reject(QueueCallback, r.callbackCap)
	}
	r.callbacks.Push(entry)
	depth := r.callbacks.Len()
	r.platform.Unlock()

	r.observers.enqueued(QueueCallback, depth)
	r.signal()
	return nil
}

func copyValue(dst, src *value.Value) error {
	if src == nil {
		return value.CreateVoid(dst)
	}
	return value.Copy(dst, src)
}

func (r *Runtime) reject(q Queue, capacity int) error {
	err := &CapacityError{Queue: q, Capacity: capacity}
	r.logger.Warn("enqueue rejected", "queue", q, "capacity", capacity)
	r.observers.rejected(q, err)
	return err
}

func (r *Runtime) signal() {
	if !r.async {
		return
	}
	r.platform.SendTickEvent()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending returns the current ability and callback queue depths.
func (r *Runtime) Pending() (abilities, callbacks int) {
	r.platform.Lock()
	defer r.platform.Unlock()
	return r.abilities.Len(), r.callbacks.Len()
}

// Tick runs one scheduling round:
//  1. every tick callback, in registration order
//  2. the callback queue, until empty
//  3. the ability queue, one entry at a time, draining the callback queue
//     after each
//
// Handler errors are logged and the round continues.
func (r *Runtime) Tick(ctx context.Context) TickStats {
	stats := TickStats{Seq: r.clock.Next()}
	r.observers.tickStarted(stats.Seq)

	r.platform.Lock()
	r.tickScratch = r.tickScratch[:0]
	r.ticks.Each(func(cb Callback) {
		r.tickScratch = append(r.tickScratch, cb)
	})
	r.platform.Unlock()

	for _, cb := range r.tickScratch {
		cb(ctx, nil)
		stats.TickCallbacks++
	}

	stats.Callbacks += r.drainCallbacks(ctx, stats.Seq)

	for {
		r.platform.Lock()
		entry, ok := r.abilities.Pop()
		r.platform.Unlock()
		if !ok {
			break
		}

		err := r.dispatcher.DispatchAbility(ctx, entry.AbilityID, &entry.Value)
		if err != nil {
			stats.Failures++
			r.logger.Error("ability execution failed",
				"error", err,
				"ability_id", entry.AbilityID,
				"value", entry.Value.String(),
				"seq", stats.Seq)
		}
		r.observers.abilityExecuted(stats.Seq, entry.AbilityID, &entry.Value, err)
		entry.Value.Free()
		stats.Abilities++

		stats.Callbacks += r.drainCallbacks(ctx, stats.Seq)
	}

	r.observers.tickFinished(stats)
	return stats
}

func (r *Runtime) drainCallbacks(ctx context.Context, seq int64) int {
	n := 0
	for {
		r.platform.Lock()
		entry, ok := r.callbacks.Pop()
		r.platform.Unlock()
		if !ok {
			return n
		}
		entry.Callback(ctx, &entry.Value)
		r.observers.callbackExecuted(seq, &entry.Value)
		entry.Value.Free()
		n++
	}
}
