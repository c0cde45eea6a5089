package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// KeyExtractor picks the bucket for a request (default: client IP).
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler builds the rejection (default: 429 with retry_after).
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) handler.Response
	// SetHeaders adds X-RateLimit-* and Retry-After headers.
	SetHeaders bool
}

// RateLimit rejects requests once their key runs out of tokens.
// It panics if no limiter is configured.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = clientIPOf
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, result *ratelimiter.Result) handler.Response {
			err := response.ErrTooManyRequests
			if secs := retryAfterSeconds(result); secs > 0 {
				err = err.WithDetails(map[string]any{"retry_after": secs})
			}
			return reject[C](ctx, err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(fmt.Errorf("rate limit: %w", err))
			}

			if cfg.SetHeaders {
				setRateLimitHeaders(ctx.ResponseWriter().Header(), result)
			}
			if !result.Allowed() {
				return cfg.ErrorHandler(ctx, result)
			}
			return next(ctx)
		}
	}
}

func setRateLimitHeaders(h http.Header, result *ratelimiter.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if secs := retryAfterSeconds(result); secs > 0 {
		h.Set("Retry-After", strconv.Itoa(secs))
	}
}

// retryAfterSeconds rounds up so clients never retry too early.
func retryAfterSeconds(result *ratelimiter.Result) int {
	d := result.RetryAfter()
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
