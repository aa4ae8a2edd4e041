package core

import "github.com/roach88/atmo/internal/value"

// TickStats counts the work a single Tick performed.
type TickStats struct {
	Seq           int64
	TickCallbacks int
	Callbacks     int
	Abilities     int
	Failures      int
}

// Idle reports whether the tick found no queued work.
func (s TickStats) Idle() bool {
	return s.Callbacks == 0 && s.Abilities == 0
}

// Observer receives runtime events. Methods run on the goroutine that
// caused the event and must not block.
type Observer interface {
	TickStarted(seq int64)
	TickFinished(stats TickStats)
	AbilityExecuted(seq int64, id uint32, v *value.Value, err error)
	CallbackExecuted(seq int64, v *value.Value)
	Enqueued(q Queue, depth int)
	Rejected(q Queue, err error)
}

// NopObserver implements Observer with no-ops. Embed it to implement a
// subset.
type NopObserver struct{}

func (NopObserver) TickStarted(int64)                                  {}
func (NopObserver) TickFinished(TickStats)                             {}
func (NopObserver) AbilityExecuted(int64, uint32, *value.Value, error) {}
func (NopObserver) CallbackExecuted(int64, *value.Value)               {}
func (NopObserver) Enqueued(Queue, int)                                {}
func (NopObserver) Rejected(Queue, error)                              {}

type observers []Observer

func (o observers) tickStarted(seq int64) {
	for _, ob := range o {
		ob.TickStarted(seq)
	}
}

func (o observers) tickFinished(s TickStats) {
	for _, ob := range o {
		ob.TickFinished(s)
	}
}

func (o observers) abilityExecuted(seq int64, id uint32, v *value.Value, err error) {
	for _, ob := range o {
		ob.AbilityExecuted(seq, id, v, err)
	}
}

func (o observers) callbackExecuted(seq int64, v *value.Value) {
	for _, ob := range o {
		ob.CallbackExecuted(seq, v)
	}
}

func (o observers) enqueued(q Queue, depth int) {
	for _, ob := range o {
		ob.Enqueued(q, depth)
	}
}

func (o observers) rejected(q Queue, err error) {
	for _, ob := range o {
		ob.Rejected(q, err)
	}
}
