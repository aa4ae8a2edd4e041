package value

import (
	"errors"
	"fmt"
)

// Status is the discrete outcome of a value operation.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusFail
	StatusNoInput
	StatusInvalidInput
	StatusOutOfMemory
	StatusMissingSupport
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFail:
		return "FAIL"
	case StatusNoInput:
		return "NO_INPUT"
	case StatusInvalidInput:
		return "INVALID_INPUT"
	case StatusOutOfMemory:
		return "OUT_OF_MEMORY"
	case StatusMissingSupport:
		return "MISSING_SUPPORT"
	default:
		return fmt.Sprintf("STATUS(%d)", uint8(s))
	}
}

// StatusError carries a non-success Status together with the operation
// that produced it.
type StatusError struct {
	// Code is the status category.
	Code Status

	// Op names the operation, e.g. "AsInt" or "CreateString".
	Op string

	// Message is a human-readable description.
	Message string
}

// Sentinels for errors.Is matching. Any *StatusError with the same Code
// matches its sentinel.
var (
	ErrFail           = &StatusError{Code: StatusFail}
	ErrNoInput        = &StatusError{Code: StatusNoInput}
	ErrInvalidInput   = &StatusError{Code: StatusInvalidInput}
	ErrOutOfMemory    = &StatusError{Code: StatusOutOfMemory}
	ErrMissingSupport = &StatusError{Code: StatusMissingSupport}
)

// Error implements the error interface.
func (e *StatusError) Error() string {
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		return e.Code.String()
	}
}

// Is matches sentinels by Code.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Op == "" && t.Message == ""
}

// StatusOf maps an error back to its Status. nil is StatusSuccess and
// errors not produced by this package are StatusFail.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return StatusFail
}

func newError(code Status, op, format string, args ...any) *StatusError {
	return &StatusError{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}
