package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// Rendering errors are handled by the framework's error handler.
//
// A handler result is either a non-nil Response (the final response to render)
// or nil, meaning the handler already wrote the response through Context.Send
// or the raw ResponseWriter.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a type-safe HTTP request handler with custom context support.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler turns an error raised by the handler chain into a response.
// The returned Response is rendered with the same rules as a handler result.
type ErrorHandler[C Context] func(ctx C, err error) Response

// Middleware wraps handlers to add cross-cutting functionality.
// The wrapped handler may call next zero, one or several times.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Empty is the explicit form of a nil handler result.
// Return it after writing the response through the low-level API.
func Empty() Response {
	return nil
}
