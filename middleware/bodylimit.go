package middleware

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
)

// Size units for BodyLimitConfig.
const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// BodyLimitConfig configures the body size middleware.
type BodyLimitConfig struct {
	Skip func(ctx handler.Context) bool
	// MaxSize applies when no content type limit matches (default: 4MB).
	MaxSize int64
	// ContentTypeLimit overrides MaxSize per media type, such as
	// "multipart/form-data".
	ContentTypeLimit map[string]int64
	// ErrorHandler renders requests whose declared length is over the limit
	// (default: 413 with the limit in details).
	ErrorHandler func(ctx handler.Context, contentLength, maxSize int64) handler.Response
}

// BodyLimit caps request bodies at maxSize bytes.
func BodyLimit[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig rejects oversized requests up front when they declare
// a Content-Length, and wraps the body with http.MaxBytesReader for the
// rest. Readers then fail with *http.MaxBytesError, which
// multipart.ParseRequest reports as a 413 ParseError.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 4 * MB
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, contentLength, maxSize int64) handler.Response {
			return reject[C](ctx, response.ErrRequestEntityTooLarge.
				WithMessage(fmt.Sprintf("Request body too large, limit is %d bytes", maxSize)).
				WithDetails(map[string]any{"limit": maxSize, "size": contentLength}))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			limit := cfg.MaxSize
			if len(cfg.ContentTypeLimit) > 0 {
				if mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err == nil {
					if l, ok := cfg.ContentTypeLimit[mt]; ok {
						limit = l
					}
				}
			}

			if req.ContentLength > limit {
				return cfg.ErrorHandler(ctx, req.ContentLength, limit)
			}
			if req.Body != nil && req.Body != http.NoBody {
				req.Body = http.MaxBytesReader(ctx.ResponseWriter(), req.Body, limit)
			}
			return next(ctx)
		}
	}
}
