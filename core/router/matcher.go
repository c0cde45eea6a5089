package router

import "github.com/dmitrymomot/onion/core/handler"

// Matcher resolves a method and path to a registered handler.
// Implementations are filled during configuration and read-only afterwards,
// which makes concurrent Match calls safe without locking.
type Matcher[C handler.Context] interface {
	// Add registers a handler. It returns a configuration error for invalid patterns.
	Add(method, pattern string, h handler.HandlerFunc[C]) error
	// Match returns nil when no route serves the method and path.
	Match(method, path string) *Match[C]
	// Routes lists registered routes.
	Routes() []Route
}

// Match is a resolved route.
type Match[C handler.Context] struct {
	Handler handler.HandlerFunc[C]
	Params  Params
	Pattern string
}

// Params holds path parameters captured by a match.
type Params map[string]string

// Get returns the captured value for key, or an empty string.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Has reports whether key was captured.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}
