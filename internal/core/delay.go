package core

import (
	"context"
	"time"
)

// delayChunk is how long DelayNonBlocking sleeps between ticks.
const delayChunk = 200 * time.Millisecond

// DelayNonBlocking pauses for d while keeping the queues moving: it sleeps
// in 200ms platform delays and ticks after each one, then sleeps the
// remainder. A delay shorter than one chunk ticks once at the end.
// Cancellation is checked between chunks.
func (r *Runtime) DelayNonBlocking(ctx context.Context, d time.Duration) error {
	if d < 0 {
		d = 0
	}
	loops := int(d / delayChunk)
	leftover := d % delayChunk

	for i := 0; i < loops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.platform.DelayMilliseconds(uint32(delayChunk / time.Millisecond))
		r.Tick(ctx)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	r.platform.DelayMilliseconds(uint32(leftover / time.Millisecond))
	if loops == 0 {
		r.Tick(ctx)
	}
	return nil
}
