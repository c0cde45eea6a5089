package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/middleware"
)

func preflight(path, origin, method string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	return req
}

func withOrigin(req *http.Request, origin string) *http.Request {
	req.Header.Set("Origin", origin)
	return req
}

func TestCORSDefaults(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.CORS[*router.Context]())
	r.Get("/items", ok)

	w := serve(r, withOrigin(get("/items"), "https://example.com"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")

	w = serve(r, get("/items"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), "same-origin requests get no CORS headers")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
		AllowOrigins:     []string{"https://app.example.com"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.Post("/items", ok)

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()
		// no OPTIONS route: the preflight is answered from the not-found chain
		w := serve(r, preflight("/items", "https://app.example.com", http.MethodPost))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		t.Parallel()
		w := serve(r, preflight("/items", "https://evil.test", http.MethodPost))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		w := serve(r, preflight("/items", "https://app.example.com", http.MethodDelete))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("actual request", func(t *testing.T) {
		t.Parallel()
		w := serve(r, withOrigin(post("/items"), "https://app.example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		w = serve(r, withOrigin(post("/items"), "https://evil.test"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count"},
	}))
	r.Get("/", ok)

	w := serve(r, withOrigin(get("/"), "https://example.com"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID,X-Total-Count", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestAllowOriginSubdomain(t *testing.T) {
	t.Parallel()

	allow := middleware.AllowOriginSubdomain("*.example.com")
	tests := []struct {
		origin string
		ok     bool
	}{
		{"https://example.com", true},
		{"https://api.example.com", true},
		{"http://api.example.com:3000", true},
		{"https://notexample.com", false},
		{"https://example.com.evil.test", false},
		{"", false},
	}
	for _, tt := range tests {
		got, ok := allow(tt.origin)
		assert.Equal(t, tt.ok, ok, tt.origin)
		if tt.ok {
			assert.Equal(t, tt.origin, got)
		}
	}
}
