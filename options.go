package onion

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/server"
)

// Option configures an App.
type Option[C handler.Context] func(*App[C])

// WithLogger sets the application logger. It is also handed to the router
// and server the App builds. Nil is ignored.
func WithLogger[C handler.Context](l *slog.Logger) Option[C] {
	return func(a *App[C]) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRouter uses r instead of building one from router options.
func WithRouter[C handler.Context](r router.Router[C]) Option[C] {
	return func(a *App[C]) { a.router = r }
}

// WithRouterOptions are passed to router.New when the App builds its router.
func WithRouterOptions[C handler.Context](opts ...router.Option[C]) Option[C] {
	return func(a *App[C]) { a.routerOpts = append(a.routerOpts, opts...) }
}

// WithServer uses srv instead of building one from the server config.
func WithServer[C handler.Context](srv *server.Server) Option[C] {
	return func(a *App[C]) { a.server = srv }
}

// WithServerConfig sets the config the App builds its server from.
func WithServerConfig[C handler.Context](cfg server.Config) Option[C] {
	return func(a *App[C]) { a.serverCfg = cfg }
}

// WithStopTimeout bounds the stop hooks (default: 30s).
func WithStopTimeout[C handler.Context](d time.Duration) Option[C] {
	return func(a *App[C]) {
		if d > 0 {
			a.stopTimeout = d
		}
	}
}
