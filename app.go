package onion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/server"
)

// Hook runs when the App starts or stops.
type Hook func(ctx context.Context) error

// Worker runs alongside the server until its context is cancelled.
// Returning an error stops the whole App.
type Worker func(ctx context.Context) error

// Plugin bundles routes, middleware, hooks and workers.
type Plugin[C handler.Context] interface {
	Name() string
	Install(app *App[C]) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc[C handler.Context] struct {
	PluginName string
	Fn         func(app *App[C]) error
}

func (p PluginFunc[C]) Name() string              { return p.PluginName }
func (p PluginFunc[C]) Install(app *App[C]) error { return p.Fn(app) }

type namedWorker struct {
	name string
	run  Worker
}

// App ties a router and a server to the process lifecycle.
type App[C handler.Context] struct {
	logger      *slog.Logger
	router      router.Router[C]
	routerOpts  []router.Option[C]
	server      *server.Server
	serverCfg   server.Config
	stopTimeout time.Duration

	mu      sync.Mutex
	running bool
	plugins []string
	onStart []Hook
	onStop  []Hook
	workers []namedWorker
}

// New builds an App. Without WithRouter it creates a router from the
// router options, rendering errors as plain text unless they set an
// error handler; without WithServer it creates a server from the server
// config, listening on :8080 by default.
func New[C handler.Context](opts ...Option[C]) (*App[C], error) {
	a := &App[C]{
		logger:      logger.Nop(),
		serverCfg:   server.Config{Addr: ":8080"},
		stopTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.router == nil {
		// later options replace the plain-text error handler
		ropts := append([]router.Option[C]{
			router.WithLogger[C](a.logger),
			router.WithErrorHandler[C](response.ErrorHandler[C]),
		}, a.routerOpts...)
		a.router = router.New(ropts...)
	}
	if a.server == nil {
		srv, err := server.NewFromConfig(a.serverCfg, server.WithLogger(a.logger))
		if err != nil {
			return nil, fmt.Errorf("onion: %w", err)
		}
		a.server = srv
	}
	return a, nil
}

// Router returns the router for route and middleware registration.
func (a *App[C]) Router() router.Router[C] {
	return a.router
}

// Logger returns the application logger.
func (a *App[C]) Logger() *slog.Logger {
	return a.logger
}

// Server returns the HTTP server.
func (a *App[C]) Server() *server.Server {
	return a.server
}

// OnStart registers a hook run before the server starts, in registration
// order. A failing hook aborts Run.
func (a *App[C]) OnStart(h Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStart = append(a.onStart, h)
}

// OnStop registers a hook run after the server has stopped, in reverse
// registration order. Every stop hook runs even if an earlier one fails.
func (a *App[C]) OnStop(h Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStop = append(a.onStop, h)
}

// Go registers a background worker, such as a session cleanup loop.
func (a *App[C]) Go(name string, w Worker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.workers = append(a.workers, namedWorker{name: name, run: w})
}

// Install runs p against the App. It must be called before Run.
func (a *App[C]) Install(p Plugin[C]) error {
	if p == nil {
		return ErrNilPlugin
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAppRunning
	}
	a.mu.Unlock()

	if err := p.Install(a); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPluginInstall, p.Name(), err)
	}

	a.mu.Lock()
	a.plugins = append(a.plugins, p.Name())
	a.mu.Unlock()
	a.logger.Debug("plugin installed", logger.Component("app"), slog.String("plugin", p.Name()))
	return nil
}

// Plugins lists installed plugin names in install order.
func (a *App[C]) Plugins() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.plugins)
}

// Run starts the App and blocks until ctx is done or a worker or the
// server fails. Start hooks run first; the server and workers then run
// under one errgroup; stop hooks run last, bounded by the stop timeout.
// Stop hooks run even when a start hook fails.
func (a *App[C]) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAppRunning
	}
	a.running = true
	onStart := slices.Clone(a.onStart)
	onStop := slices.Clone(a.onStop)
	workers := slices.Clone(a.workers)
	a.mu.Unlock()

	var runErr error
	if err := runStartHooks(ctx, onStart); err != nil {
		runErr = err
	} else {
		runErr = a.serve(ctx, workers)
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.stopTimeout)
	defer cancel()
	return errors.Join(runErr, runStopHooks(stopCtx, onStop))
}

func (a *App[C]) serve(ctx context.Context, workers []namedWorker) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(gctx, a.router)
	})
	for _, w := range workers {
		g.Go(func() error {
			a.logger.DebugContext(gctx, "worker started", logger.Component("app"), slog.String("worker", w.name))
			if err := w.run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("onion: worker %s: %w", w.name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		a.logger.Error("app stopped with error", logger.Component("app"), logger.Error(err))
	}
	return err
}

func runStartHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%w: #%d: %w", ErrStartHook, i, err)
		}
	}
	return nil
}

func runStopHooks(ctx context.Context, hooks []Hook) error {
	var errs []error
	for i, h := range slices.Backward(hooks) {
		if err := h(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: #%d: %w", ErrStopHook, i, err))
		}
	}
	return errors.Join(errs...)
}
