// Package dispatch maps numeric ability and trigger IDs to handlers.
//
// An ability is a function from an input Value to an output Value. After
// it returns, the registry fires the ability's output triggers with the
// output. A trigger fans its value out to every ability wired to it. The
// whole chain runs synchronously on the caller's goroutine, and a depth
// limit stops runaway cycles in the wiring graph.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/atmo/internal/value"
)

// AbilityFunc computes out from in. out starts as Void.
type AbilityFunc func(ctx context.Context, in, out *value.Value) error

// Ability describes one registered ability.
type Ability struct {
	ID   uint32
	Name string
	Func AbilityFunc

	// Triggers are fired with the output after Func succeeds.
	Triggers []uint32
}

// Trigger describes a named fan-out point.
type Trigger struct {
	ID      uint32
	Name    string
	Targets []uint32
}

// Observer is notified of every synchronous dispatch.
type Observer interface {
	AbilityDispatched(ctx context.Context, id uint32, name string, depth int, in *value.Value, err error)
	TriggerFired(ctx context.Context, id uint32, name string, depth int, v *value.Value, targets int)
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxDepth sets the nesting limit. 0 disables the guard.
func WithMaxDepth(n int) Option {
	return func(r *Registry) {
		r.maxDepth = n
	}
}

// WithLogger sets the logger used for failures inside trigger fan-out.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// Registry holds the ability and trigger tables. Registration is safe
// while dispatch is running.
type Registry struct {
	mu        sync.RWMutex
	abilities map[uint32]Ability
	triggers  map[uint32]Trigger
	maxDepth  int
	logger    *slog.Logger
	observers []Observer
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		abilities: make(map[uint32]Ability),
		triggers:  make(map[uint32]Trigger),
		maxDepth:  DefaultMaxDepth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAbility adds a. IDs must be unique.
func (r *Registry) RegisterAbility(a Ability) error {
	if a.Func == nil {
		return fmt.Errorf("ability %d (%s): nil func", a.ID, a.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.abilities[a.ID]; ok {
		return &DispatchError{
			Code:      ErrCodeDuplicate,
			Message:   fmt.Sprintf("ability %d already registered as %q", a.ID, prev.Name),
			AbilityID: a.ID,
		}
	}
	a.Triggers = append([]uint32(nil), a.Triggers...)
	r.abilities[a.ID] = a
	return nil
}

// RegisterTrigger adds t. IDs must be unique.
func (r *Registry) RegisterTrigger(t Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.triggers[t.ID]; ok {
		return &DispatchError{
			Code:      ErrCodeDuplicate,
			Message:   fmt.Sprintf("trigger %d already registered as %q", t.ID, prev.Name),
			TriggerID: t.ID,
		}
	}
	t.Targets = append([]uint32(nil), t.Targets...)
	r.triggers[t.ID] = t
	return nil
}

// Wire appends ability to trigger's targets.
func (r *Registry) Wire(trigger, ability uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.triggers[trigger]
	if !ok {
		return &DispatchError{
			Code:      ErrCodeUnknownTrigger,
			Message:   fmt.Sprintf("trigger %d not registered", trigger),
			TriggerID: trigger,
		}
	}
	t.Targets = append(t.Targets, ability)
	r.triggers[trigger] = t
	return nil
}

// Ability returns the registered ability with id.
func (r *Registry) Ability(id uint32) (Ability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.abilities[id]
	return a, ok
}

// Trigger returns the registered trigger with id.
func (r *Registry) Trigger(id uint32) (Trigger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.triggers[id]
	return t, ok
}

// AbilityIDs returns all ability IDs in ascending order.
func (r *Registry) AbilityIDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint32, 0, len(r.abilities))
	for id := range r.abilities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DispatchAbility runs ability id with v, then fires its output triggers.
// A nil v is treated as Void. It satisfies core.Dispatcher.
func (r *Registry) DispatchAbility(ctx context.Context, id uint32, v *value.Value) error {
	if v == nil {
		v = &value.Value{}
	}
	a, ok := r.Ability(id)
	depth := Depth(ctx) + 1
	if !ok {
		err := &DispatchError{
			Code:      ErrCodeUnknownAbility,
			Message:   fmt.Sprintf("ability %d not registered", id),
			AbilityID: id,
		}
		r.notifyAbility(ctx, id, "", depth, v, err)
		return err
	}
	if r.maxDepth > 0 && depth > r.maxDepth {
		err := &DepthError{AbilityID: id, Depth: depth, Limit: r.maxDepth}
		r.notifyAbility(ctx, id, a.Name, depth, v, err)
		return err
	}

	ctx = enter(ctx, r, depth)

	var out value.Value
	defer out.Free()

	if err := a.Func(ctx, v, &out); err != nil {
		if IsDepthError(err) {
			r.notifyAbility(ctx, id, a.Name, depth, v, err)
			return err
		}
		herr := &DispatchError{
			Code:      ErrCodeHandlerFailed,
			Message:   fmt.Sprintf("ability %d (%s)", id, a.Name),
			AbilityID: id,
			Err:       err,
		}
		r.notifyAbility(ctx, id, a.Name, depth, v, herr)
		return herr
	}
	r.notifyAbility(ctx, id, a.Name, depth, v, nil)

	var errs []error
	for _, trig := range a.Triggers {
		if err := r.DispatchTrigger(ctx, trig, &out); err != nil {
			if IsDepthError(err) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DispatchTrigger invokes every ability wired to trigger id, in wiring
// order. A failing target is logged and the rest still run; a depth error
// stops the fan-out.
func (r *Registry) DispatchTrigger(ctx context.Context, id uint32, v *value.Value) error {
	if v == nil {
		v = &value.Value{}
	}
	t, ok := r.Trigger(id)
	if !ok {
		return &DispatchError{
			Code:      ErrCodeUnknownTrigger,
			Message:   fmt.Sprintf("trigger %d not registered", id),
			TriggerID: id,
		}
	}
	r.notifyTrigger(ctx, id, t.Name, Depth(ctx), v, len(t.Targets))

	var errs []error
	for _, target := range t.Targets {
		if err := r.DispatchAbility(ctx, target, v); err != nil {
			if IsDepthError(err) {
				return err
			}
			r.logger.Error("trigger target failed",
				"trigger", t.Name,
				"trigger_id", id,
				"ability_id", target,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fire dispatches trigger id on the registry running the current ability.
// Ability functions use it for conditional outputs. Outside an ability it
// returns an error.
func Fire(ctx context.Context, id uint32, v *value.Value) error {
	r := registryFrom(ctx)
	if r == nil {
		return errors.New("dispatch: Fire called outside an ability")
	}
	return r.DispatchTrigger(ctx, id, v)
}

func (r *Registry) notifyAbility(ctx context.Context, id uint32, name string, depth int, in *value.Value, err error) {
	for _, o := range r.observers {
		o.AbilityDispatched(ctx, id, name, depth, in, err)
	}
}

func (r *Registry) notifyTrigger(ctx context.Context, id uint32, name string, depth int, v *value.Value, targets int) {
	for _, o := range r.observers {
		o.TriggerFired(ctx, id, name, depth, v, targets)
	}
}
