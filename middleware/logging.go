package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/router"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	Skip func(ctx handler.Context) bool
	// Logger defaults to the router's logger for the request.
	Logger *slog.Logger
	// Level is used for successful requests (default: info).
	// Client errors log at warn, server errors at error.
	Level slog.Level
	// SlowRequestThreshold raises the level of slow requests to warn (default: 5s).
	SlowRequestThreshold time.Duration
	// LogHeaders adds request headers, with SensitiveHeaders redacted.
	LogHeaders       bool
	SensitiveHeaders []string
	Component        string
}

var defaultSensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
	"X-Auth-Token",
	"X-Csrf-Token",
}

// Logging writes one record per request after the response is out.
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

func LoggingWithLogger[C handler.Context](l *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: l})
}

func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = defaultSensitiveHeaders
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			req := ctx.Request()
			out, resp := settle(ctx, next(ctx))
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				logger.Component(cfg.Component),
				logger.Method(req.Method),
				logger.Path(req.URL.Path),
				logger.Pattern(router.RoutePattern(ctx)),
				logger.StatusCode(out.status),
				logger.BytesOut(int64(out.size)),
				logger.Duration(elapsed),
				logger.ClientIP(clientIPOf(ctx)),
				logger.UserAgent(req.UserAgent()),
			}
			if id, ok := GetRequestID(ctx); ok {
				attrs = append(attrs, logger.RequestID(id))
			}
			if req.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", req.URL.RawQuery))
			}
			if cfg.LogHeaders {
				attrs = append(attrs, slog.Any("headers", redact(req.Header, cfg.SensitiveHeaders)))
			}
			if out.err != nil {
				attrs = append(attrs, logger.Error(out.err))
			}

			level := cfg.Level
			switch {
			case out.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case out.status >= http.StatusBadRequest, elapsed >= cfg.SlowRequestThreshold:
				level = max(level, slog.LevelWarn)
			}

			l := cfg.Logger
			if l == nil {
				l = router.Logger(ctx)
			}
			l.LogAttrs(ctx, level, "request completed", attrs...)

			return resp
		}
	}
}

func redact(h http.Header, sensitive []string) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		switch {
		case slices.ContainsFunc(sensitive, func(s string) bool { return http.CanonicalHeaderKey(s) == k }):
			out[k] = "[REDACTED]"
		case len(v) == 1:
			out[k] = v[0]
		default:
			out[k] = v
		}
	}
	return out
}
