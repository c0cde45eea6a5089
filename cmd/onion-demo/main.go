// Command onion-demo serves a small JSON/HTML application built on onion.
//
// Configuration comes from the environment (and .env). Set DEMO_STORAGE=redis
// and REDIS_URL to keep sessions and rate limits in Redis.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/onion"
	"github.com/dmitrymomot/onion/core/config"
	"github.com/dmitrymomot/onion/core/cookie"
	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/health"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/session"
	"github.com/dmitrymomot/onion/integration/database/redis"
	"github.com/dmitrymomot/onion/middleware"
	"github.com/dmitrymomot/onion/pkg/ratelimiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	log := logger.FromConfig(cfg.Log, logger.WithContextExtractors(middleware.RequestIDExtractor))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("demo stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	app, err := onion.New(
		onion.WithLogger[*Context](log),
		onion.WithServerConfig[*Context](cfg.Server),
		onion.WithRouterOptions(
			router.WithContextFactory(newContext),
			router.WithConfig[*Context](cfg.Router),
			router.WithErrorHandler[*Context](response.JSONErrorHandler[*Context]),
		),
	)
	if err != nil {
		return err
	}

	st, err := newStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	app.OnStop(st.close)

	if len(cfg.Cookie.Secrets) == 0 {
		if !cfg.Development {
			return fmt.Errorf("COOKIE_SECRETS is required outside development")
		}
		cfg.Cookie.Secrets = []string{randomSecret()}
		log.Warn("COOKIE_SECRETS not set, using a random secret; sessions reset on restart")
	}
	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}

	sessions := session.NewManager(st.sessions, cookies, session.WithConfig(cfg.Session))
	sessions.SetLogger(log)
	app.Go("session-cleanup", sessions.Run)

	limiter, err := ratelimiter.NewBucket(st.limits, cfg.RateLimit)
	if err != nil {
		return err
	}
	if mem, ok := st.limits.(*ratelimiter.MemoryStore); ok {
		app.Go("ratelimit-sweep", mem.Run)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	secCfg := middleware.BalancedSecurity
	secCfg.IsDevelopment = cfg.Development

	r := app.Router()
	r.Use(
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
		middleware.Logging[*Context](),
		middleware.MetricsWithConfig[*Context](middleware.MetricsConfig{
			Registerer: registry,
			Namespace:  "onion_demo",
			Skip:       isInfraPath,
		}),
		middleware.SecurityHeadersWithConfig[*Context](secCfg),
	)
	if len(cfg.CORSOrigins) > 0 {
		// global so preflights to unregistered OPTIONS routes are answered
		r.Use(middleware.CORSWithConfig[*Context](middleware.CORSConfig{
			AllowOrigins:  cfg.CORSOrigins,
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
			MaxAge:        600,
			Skip: func(ctx handler.Context) bool {
				return !strings.HasPrefix(ctx.Request().URL.Path, "/api/")
			},
		}))
	}

	r.Get("/health/live", health.Liveness[*Context])
	r.Get("/health/ready", health.Readiness[*Context](log, st.checks...))
	r.Get("/metrics", middleware.MetricsHandler[*Context](registry))

	r.Group(func(r router.Router[*Context]) {
		r.Use(middleware.Session[*Context](sessions))
		r.Get("/", home)
		r.Get("/events", clock)
		r.Get("/ws", echo)
	})

	r.Route("/api", func(r router.Router[*Context]) {
		r.Use(
			middleware.RateLimit[*Context](middleware.RateLimitConfig{Limiter: limiter, SetHeaders: true}),
			middleware.Timeout[*Context](cfg.Server.WriteTimeout),
			middleware.BodyLimitWithConfig[*Context](middleware.BodyLimitConfig{
				MaxSize:          middleware.MB,
				ContentTypeLimit: map[string]int64{"multipart/form-data": cfg.MaxUpload},
			}),
		)
		r.Get("/hello/:name?", hello)
		r.Post("/upload", upload)

		r.With(middleware.Session[*Context](sessions)).Route("/me", func(r router.Router[*Context]) {
			r.Get("/", visits)
			r.Post("/name", rename)
		})
	})

	for _, rt := range r.Routes() {
		log.Debug("route registered", slog.String("method", rt.Method), logger.Pattern(rt.Pattern))
	}

	return app.Run(ctx)
}

func isInfraPath(ctx handler.Context) bool {
	switch ctx.Request().URL.Path {
	case "/health/live", "/health/ready", "/metrics":
		return true
	}
	return false
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// storage holds the backends selected by DEMO_STORAGE.
type storage struct {
	sessions session.Store[Visit]
	limits   ratelimiter.Store
	checks   []health.Check
	close    onion.Hook
}

func newStorage(ctx context.Context, cfg Config, log *slog.Logger) (*storage, error) {
	switch cfg.Storage {
	case "memory":
		return &storage{
			sessions: session.NewMemoryStore[Visit](),
			limits:   ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log)),
			close:    func(context.Context) error { return nil },
		}, nil
	case "redis":
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &storage{
			sessions: session.NewRedisStore[Visit](client),
			limits:   ratelimiter.NewRedisStore(client),
			checks:   []health.Check{{Name: "redis", Fn: redis.Healthcheck(client)}},
			close:    func(context.Context) error { return client.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unknown DEMO_STORAGE %q", cfg.Storage)
	}
}
