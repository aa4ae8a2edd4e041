package core

import (
	"context"
	"time"
)

// Run drives Tick until ctx is cancelled. With async tick it ticks on
// every wake signal; with a positive interval it also ticks on a timer.
// Without async tick the interval must be positive.
//
// Handler failures inside a tick are logged and the loop continues.
func (r *Runtime) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info("runtime starting", "run_id", r.runID, "interval", interval, "async_tick", r.async)

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	} else if !r.async {
		r.logger.Warn("no tick interval and async tick disabled, using default", "interval", DefaultTickInterval)
		t := time.NewTicker(DefaultTickInterval)
		defer t.Stop()
		tick = t.C
	}

	// Work queued before Run started would otherwise wait for the first
	// timer or wake.
	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runtime stopping: context cancelled", "run_id", r.runID, "ticks", r.clock.Current())
			return ctx.Err()
		case <-r.wake:
			r.Tick(ctx)
		case <-tick:
			r.Tick(ctx)
		}
	}
}

// DefaultTickInterval is used by Run when neither an interval nor async
// tick is configured.
const DefaultTickInterval = 10 * time.Millisecond

// Wait returns the wake channel used under async tick. It receives after
// an enqueue; multiple enqueues before a receive coalesce.
func (r *Runtime) Wait() <-chan struct{} {
	return r.wake
}
