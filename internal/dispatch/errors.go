package dispatch

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes dispatch failures.
type ErrorCode string

const (
	// ErrCodeUnknownAbility indicates no handler is registered for an ability ID.
	ErrCodeUnknownAbility ErrorCode = "UNKNOWN_ABILITY"

	// ErrCodeUnknownTrigger indicates no trigger is registered for a trigger ID.
	ErrCodeUnknownTrigger ErrorCode = "UNKNOWN_TRIGGER"

	// ErrCodeDepthExceeded indicates a synchronous chain passed the depth limit.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeHandlerFailed indicates an ability function returned an error.
	ErrCodeHandlerFailed ErrorCode = "HANDLER_FAILED"

	// ErrCodeDuplicate indicates an ID was registered twice.
	ErrCodeDuplicate ErrorCode = "DUPLICATE_ID"
)

// DispatchError describes a failed ability or trigger dispatch.
type DispatchError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// AbilityID is set for ability failures.
	AbilityID uint32

	// TriggerID is set for trigger failures.
	TriggerID uint32

	// Err is the handler's own error for ErrCodeHandlerFailed.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the handler error.
func (e *DispatchError) Unwrap() error { return e.Err }

// DepthError is returned when nested ability/trigger dispatch exceeds the
// registry's depth limit. The chain stops at the ability that would have
// exceeded it.
type DepthError struct {
	AbilityID uint32
	Depth     int
	Limit     int
}

// Error implements the error interface.
func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: ability %d at depth %d exceeds limit %d",
		ErrCodeDepthExceeded, e.AbilityID, e.Depth, e.Limit)
}

// IsDepthError reports whether err is or wraps a DepthError.
func IsDepthError(err error) bool {
	var de *DepthError
	return errors.As(err, &de)
}

// IsUnknownAbility reports whether err is an unknown-ability dispatch error.
func IsUnknownAbility(err error) bool {
	return hasCode(err, ErrCodeUnknownAbility)
}

// IsUnknownTrigger reports whether err is an unknown-trigger dispatch error.
func IsUnknownTrigger(err error) bool {
	return hasCode(err, ErrCodeUnknownTrigger)
}

// IsHandlerError reports whether err came from an ability function.
func IsHandlerError(err error) bool {
	return hasCode(err, ErrCodeHandlerFailed)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
