package health

import (
	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
)

// Liveness reports that the process is up. It checks no dependencies.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// NoContent answers 204 with no body, for high-frequency health checks.
func NoContent[C handler.Context](C) handler.Response {
	return response.NoContent()
}
