package middleware

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
)

const maxRequestIDLength = 128

var requestIDKey = handler.NewKey[string]("request_id")

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Skip func(ctx handler.Context) bool
	// Generator creates new IDs (default: UUID v4).
	Generator func() string
	// HeaderName is read and written (default: "X-Request-ID").
	HeaderName string
	// UseExisting keeps a well-formed ID sent by the client or a proxy.
	UseExisting bool
}

// RequestID assigns every request a fresh UUID, stores it in the context
// and echoes it in the X-Request-ID response header.
func RequestID[C handler.Context]() handler.Middleware[C] {
	return RequestIDWithConfig[C](RequestIDConfig{})
}

func RequestIDWithConfig[C handler.Context](cfg RequestIDConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			var id string
			if cfg.UseExisting {
				if v := ctx.Request().Header.Get(cfg.HeaderName); validRequestID(v) {
					id = v
				}
			}
			if id == "" {
				id = cfg.Generator()
			}

			handler.Set(ctx, requestIDKey, id)
			ctx.ResponseWriter().Header().Set(cfg.HeaderName, id)
			return next(ctx)
		}
	}
}

// GetRequestID returns the ID assigned by RequestID.
func GetRequestID(ctx handler.Context) (string, bool) {
	return handler.Get(ctx, requestIDKey)
}

// RequestIDExtractor adds request_id to log records whose context is a
// request Context. Pass it to logger.WithContextExtractors.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	if !ok || id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

// validRequestID accepts short IDs made of URL-safe characters, which keeps
// client supplied values out of logs unless they are harmless.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := range len(id) {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
