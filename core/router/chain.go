package router

import "github.com/dmitrymomot/onion/core/handler"

// chain builds a single handler from a middleware stack and endpoint.
// The first middleware ends up outermost: it sees the request first and the
// response last.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint

	// Wrap in reverse order so the first middleware runs first
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}

// Chain composes middlewares around h exactly as the router does at registration.
func Chain[C handler.Context](h handler.HandlerFunc[C], middlewares ...handler.Middleware[C]) handler.HandlerFunc[C] {
	return chain(middlewares, h)
}
