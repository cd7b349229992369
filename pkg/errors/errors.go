// Package errors provides structured error handling for the mapcircle
// library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConstruction indicates an invalid circle construction
	// (non-positive radius, malformed center).
	KindConstruction
	// KindConfiguration indicates inconsistent options (for example a
	// minimum radius above the maximum).
	KindConfiguration
	// KindState indicates an operation invoked in the wrong state,
	// such as updating a drag that was never begun.
	KindState
	// KindHost indicates a failure reported by the host map renderer.
	KindHost
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindConfiguration:
		return "configuration"
	case KindState:
		return "state"
	case KindHost:
		return "host"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// CircleError represents a structured error in the mapcircle library.
type CircleError struct {
	// Op is the operation that failed (e.g., "circle.New").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Circle is the instance id of the circle involved, if applicable.
	Circle string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CircleError) Error() string {
	if e.Circle != "" {
		return fmt.Sprintf("%s [%s] circle=%s: %v", e.Op, e.Kind, e.Circle, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *CircleError) Unwrap() error {
	return e.Err
}

// Construction builds a KindConstruction error for the given operation.
func Construction(op string, err error) *CircleError {
	return &CircleError{Op: op, Kind: KindConstruction, Err: err}
}

// Configuration builds a KindConfiguration error for the given operation.
func Configuration(op string, err error) *CircleError {
	return &CircleError{Op: op, Kind: KindConfiguration, Err: err}
}

// State builds a KindState error for the given operation.
func State(op string, err error) *CircleError {
	return &CircleError{Op: op, Kind: KindState, Err: err}
}

// Host builds a KindHost error for the given operation.
func Host(op string, err error) *CircleError {
	return &CircleError{Op: op, Kind: KindHost, Err: err}
}

// IsKind reports whether err is a *CircleError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := err.(*CircleError)
	return ok && ce.Kind == kind
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "binding.handlePointer").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the mapcircle library.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *CircleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
