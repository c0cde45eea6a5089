package middleware_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/middleware"
	"github.com/dmitrymomot/onion/pkg/ratelimiter"
)

func newLimiter(t *testing.T, capacity int) ratelimiter.RateLimiter {
	t.Helper()
	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)
	return limiter
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
		Limiter:    newLimiter(t, 2),
		SetHeaders: true,
	}))
	r.Get("/", ok)

	for i := range 2 {
		w := serve(r, get("/"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
		assert.Empty(t, w.Header().Get("Retry-After"))
	}

	w := serve(r, get("/"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 60, retry, 1)
	assert.Contains(t, w.Body.String(), `"code":"too_many_requests"`)
	assert.Contains(t, w.Body.String(), `"retry_after":`)

	// another client has its own bucket
	req := get("/")
	req.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRateLimitCustomKeyAndHandler(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
		Limiter:      newLimiter(t, 1),
		KeyExtractor: func(ctx handler.Context) string { return ctx.Request().Header.Get("X-Api-Key") },
		ErrorHandler: func(_ handler.Context, result *ratelimiter.Result) handler.Response {
			return func(w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusServiceUnavailable)
				return nil
			}
		},
		Skip: func(ctx handler.Context) bool { return ctx.Request().URL.Path == "/health" },
	}))
	r.Get("/", ok)
	r.Get("/health", ok)

	withKey := func(key string) *http.Request {
		req := get("/")
		req.Header.Set("X-Api-Key", key)
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, withKey("a")).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, withKey("a")).Code)
	assert.Equal(t, http.StatusOK, serve(r, withKey("b")).Code)
	assert.Empty(t, serve(r, withKey("b")).Header().Get("X-RateLimit-Limit"))

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(r, get("/health")).Code)
	}
}

type failingLimiter struct{ ratelimiter.RateLimiter }

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, ratelimiter.ErrStoreUnavailable
}

func TestRateLimitStoreFailure(t *testing.T) {
	t.Parallel()

	var got error
	r := router.New(router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) handler.Response {
		got = err
		return func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusInternalServerError)
			return nil
		}
	}))
	r.Use(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{Limiter: failingLimiter{}}))
	r.Get("/", ok)

	w := serve(r, get("/"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.ErrorIs(t, got, ratelimiter.ErrStoreUnavailable)
}

func TestRateLimitRequiresLimiter(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { middleware.RateLimit[*router.Context](middleware.RateLimitConfig{}) })
}
