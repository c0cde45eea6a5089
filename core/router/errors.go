package router

import (
	"errors"
	"fmt"
)

var (
	// Mux errors
	ErrNoContextFactory = errors.New("no context factory provided")
	ErrNilResponse      = errors.New("nil response")
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrNilSubrouter     = errors.New("nil subrouter")
	ErrRouterFrozen     = errors.New("routes cannot be registered after the router started serving")
	ErrMiddlewareOrder  = errors.New("all middlewares must be defined before routes")

	// Pattern errors
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrInvalidRegexp    = errors.New("invalid route path pattern regexp")
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrOptionalPosition = errors.New("optional parameter must be the last segment")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrCustomPattern    = errors.New("custom parameter patterns require the regexp matcher")
)

// PanicError interface allows external error handlers to detect and handle panics.
// When a panic is recovered by the router, it's wrapped in an error that implements
// this interface, providing access to the original panic value and stack trace.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

// panicError is the private implementation of PanicError interface.
type panicError struct {
	value any
	stack []byte
}

// Error implements the error interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Value returns the original panic value.
func (e *panicError) Value() any {
	return e.value
}

// Stack returns the stack trace.
func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// StackTrace returns the stack captured when err was raised by a panic,
// or nil for ordinary returned errors.
func StackTrace(err error) []byte {
	var pe PanicError
	if errors.As(err, &pe) {
		return pe.Stack()
	}
	return nil
}
