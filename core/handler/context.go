package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the framework.
// Use router.Context for the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)

	// Send renders resp immediately through the low-level writer.
	// Only the first terminal write of a request takes effect; later calls are no-ops.
	Send(resp Response) error
	// Sent reports whether a response has already been written for this request.
	Sent() bool
}
