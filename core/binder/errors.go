package binder

import (
	"errors"
	"net/http"
)

var (
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrMissingContentType   = errors.New("binder: missing content type")
	ErrInvalidTarget        = errors.New("binder: target must be a non-nil pointer to struct")
	ErrFailedToParseJSON    = errors.New("binder: failed to parse JSON body")
	ErrBodyTooLarge         = errors.New("binder: request body too large")
	ErrFailedToParseForm    = errors.New("binder: failed to parse form")
	ErrFailedToParseQuery   = errors.New("binder: failed to parse query parameters")
	ErrFailedToParsePath    = errors.New("binder: failed to parse path parameters")
)

// Error reports a binding failure. Field is empty when the failure is not
// tied to one struct field.
type Error struct {
	Err    error
	Field  string
	Detail string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the failure to an HTTP status for error handlers.
func (e *Error) StatusCode() int {
	switch {
	case errors.Is(e.Err, ErrUnsupportedMediaType), errors.Is(e.Err, ErrMissingContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(e.Err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(e.Err, ErrInvalidTarget):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func bindError(err error, field, detail string) *Error {
	return &Error{Err: err, Field: field, Detail: detail}
}
