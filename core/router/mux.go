package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/onion/core/handler"
)

// mux registers routes into a shared dispatcher. The root router is a mux with
// an empty prefix; groups are muxes carrying a path prefix and their own
// middleware list.
type mux[C handler.Context] struct {
	d           *dispatcher[C]
	root        bool
	prefix      string
	middlewares []handler.Middleware[C]
	hasRoutes   bool
}

// newMux creates a new root router instance.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	return &mux[C]{
		d:    newDispatcher[C](opts...),
		root: true,
	}
}

// ServeHTTP implements http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.d.ServeHTTP(w, r)
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodHead, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Connect registers a handler for CONNECT requests.
func (m *mux[C]) Connect(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodConnect, pattern, h)
}

// Trace registers a handler for TRACE requests.
func (m *mux[C]) Trace(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodTrace, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	composed := m.compose(h)
	for _, method := range allMethods {
		m.register(method, pattern, composed)
	}
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	composed := m.compose(h)
	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		mt, err := normalizeMethod(method)
		if err != nil {
			panic(err)
		}
		if seen[mt] {
			continue
		}
		seen[mt] = true
		m.register(mt, pattern, composed)
	}
}

// Use appends middleware. On the root router it is global middleware.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.root {
		if m.d.hasRoutes {
			panic(fmt.Errorf("%w on a mux", ErrMiddlewareOrder))
		}
		m.d.middlewares = append(m.d.middlewares, middlewares...)
		return
	}
	if m.hasRoutes {
		panic(fmt.Errorf("%w in a group", ErrMiddlewareOrder))
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	mws := make([]handler.Middleware[C], 0, len(m.middlewares)+len(middlewares))
	mws = append(mws, m.middlewares...)
	mws = append(mws, middlewares...)

	return &mux[C]{
		d:           m.d,
		prefix:      m.prefix,
		middlewares: mws,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	g := m.With()
	if fn != nil {
		fn(g)
	}
	return g
}

// Route creates a group whose routes share the given path prefix.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern))
	}

	g := m.With().(*mux[C])
	g.prefix = joinPath(m.prefix, pattern)
	fn(g)
	return g
}

// NotFound sets the handler for unmatched requests.
func (m *mux[C]) NotFound(h handler.HandlerFunc[C]) {
	if m.d.frozen.Load() {
		panic(ErrRouterFrozen)
	}
	m.d.notFound = h
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	return m.d.matcher.Routes()
}

// handle composes h with the middleware in scope and registers it.
func (m *mux[C]) handle(method, pattern string, h handler.HandlerFunc[C]) {
	m.register(method, pattern, m.compose(h))
}

// compose folds global, group and route middleware around h. It runs once per
// route at registration time; the result is what the matcher stores.
func (m *mux[C]) compose(h handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	all := make([]handler.Middleware[C], 0, len(m.d.middlewares)+len(m.middlewares))
	all = append(all, m.d.middlewares...)
	all = append(all, m.middlewares...)
	return chain(all, h)
}

func (m *mux[C]) register(method, pattern string, h handler.HandlerFunc[C]) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern))
	}
	m.hasRoutes = true
	m.d.register(method, joinPath(m.prefix, pattern), h)
}

func joinPath(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	if pattern == "/" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + pattern
}
