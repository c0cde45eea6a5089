package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*dispatcher[C])

// Config provides environment-based router settings.
type Config struct {
	MethodOverride bool   `env:"ROUTER_METHOD_OVERRIDE" envDefault:"false"`
	OverrideHeader string `env:"ROUTER_OVERRIDE_HEADER" envDefault:"X-HTTP-Method-Override"`
	OverrideQuery  string `env:"ROUTER_OVERRIDE_QUERY" envDefault:"_method"`
	OverrideForm   string `env:"ROUTER_OVERRIDE_FORM" envDefault:"_method"`
	// Matcher selects the matching engine: "trie" or "regexp".
	Matcher string `env:"ROUTER_MATCHER" envDefault:"trie"`
}

// WithConfig applies environment-based settings.
func WithConfig[C handler.Context](cfg Config) Option[C] {
	return func(d *dispatcher[C]) {
		if cfg.MethodOverride {
			d.override = &MethodOverride{
				Header:     cfg.OverrideHeader,
				QueryParam: cfg.OverrideQuery,
				FormField:  cfg.OverrideForm,
			}
		}
		if cfg.Matcher == "regexp" {
			d.matcher = NewRegexp[C]()
		}
	}
}

// WithErrorHandler sets the handler for errors raised by the handler chain.
// Without one, unhandled errors produce a plain 500 response.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(d *dispatcher[C]) {
		if h != nil {
			d.errorHandler = h
		}
	}
}

// WithNotFound sets the handler for requests no route matches.
func WithNotFound[C handler.Context](h handler.HandlerFunc[C]) Option[C] {
	return func(d *dispatcher[C]) {
		if h != nil {
			d.notFound = h
		}
	}
}

// WithMiddleware adds global middleware to the router.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(d *dispatcher[C]) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// WithContextFactory sets a custom context factory for the router.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request, Params) C) Option[C] {
	return func(d *dispatcher[C]) {
		d.newContext = f
	}
}

// WithLogger sets a custom logger for the router.
// The logger is also injected into every request; see Logger.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(d *dispatcher[C]) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMethodOverride enables tunneling PUT, PATCH and DELETE through POST.
func WithMethodOverride[C handler.Context](o MethodOverride) Option[C] {
	return func(d *dispatcher[C]) {
		d.override = &o
	}
}

// WithMatcher replaces the default trie matcher, e.g. with NewRegexp.
func WithMatcher[C handler.Context](m Matcher[C]) Option[C] {
	return func(d *dispatcher[C]) {
		if m != nil {
			d.matcher = m
		}
	}
}
