package multipart

import (
	"errors"
	"net/http"
)

var (
	ErrMissingBoundary   = errors.New("multipart: missing boundary parameter")
	ErrInvalidBoundary   = errors.New("multipart: invalid boundary parameter")
	ErrNoInitialBoundary = errors.New("multipart: initial boundary not found")
	ErrMalformedPart     = errors.New("multipart: part has no header separator")
	ErrUnterminated      = errors.New("multipart: closing boundary not found")
	ErrNotMultipart      = errors.New("multipart: content type is not multipart/form-data")
	ErrBodyTooLarge      = errors.New("multipart: request body too large")
)

// ParseError describes why a body could not be decoded.
// It unwraps to one of the package sentinels.
type ParseError struct {
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode maps the failure to an HTTP status for error handlers.
func (e *ParseError) StatusCode() int {
	switch {
	case errors.Is(e.Err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(e.Err, ErrNotMultipart):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

func parseError(err error, detail string) *ParseError {
	return &ParseError{Err: err, Detail: detail}
}
