package core

import (
	"errors"
	"fmt"

	"github.com/roach88/atmo/internal/value"
)

// Queue names one of the runtime's queues.
type Queue string

const (
	QueueAbility  Queue = "ability"
	QueueCallback Queue = "callback"
	QueueTick     Queue = "tick"
)

// CapacityError is returned when an enqueue finds its queue full. It
// matches value.ErrOutOfMemory under errors.Is.
type CapacityError struct {
	Queue    Queue
	Capacity int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s queue full (capacity %d)", e.Queue, e.Capacity)
}

// Unwrap maps the error onto the OutOfMemory status.
func (e *CapacityError) Unwrap() error { return value.ErrOutOfMemory }

// IsCapacityError reports whether err is or wraps a CapacityError.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
