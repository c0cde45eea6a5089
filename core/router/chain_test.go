package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/router"
)

// trace records middleware events. It is shared by the goroutine of a single
// request only, but the mutex keeps the race detector quiet across subtests.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(e string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, e)
}

func (tr *trace) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func recordMW(tr *trace, name string) handler.Middleware[*router.Context] {
	return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			tr.add(name + "-before")
			resp := next(ctx)
			tr.add(name + "-after")
			return resp
		}
	}
}

func TestChainOnionOrder(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	h := router.Chain(func(ctx *router.Context) handler.Response {
		tr.add("H")
		return text("ok")
	}, recordMW(tr, "A"), recordMW(tr, "B"), recordMW(tr, "C"))

	resp := h(nil)
	require.NotNil(t, resp)
	assert.Equal(t, []string{
		"A-before", "B-before", "C-before", "H", "C-after", "B-after", "A-after",
	}, tr.list())
}

func TestChainWithoutMiddleware(t *testing.T) {
	t.Parallel()

	calls := 0
	h := router.Chain(func(ctx *router.Context) handler.Response {
		calls++
		return nil
	})
	assert.Nil(t, h(nil))
	assert.Equal(t, 1, calls)
}

func TestMiddlewareScopes(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	r := router.New[*router.Context]()
	r.Use(recordMW(tr, "global"))
	r.Route("/api", func(api router.Router[*router.Context]) {
		api.Use(recordMW(tr, "group"))
		api.With(recordMW(tr, "route")).Get("/ping", func(ctx *router.Context) handler.Response {
			tr.add("handler")
			return text("pong")
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, []string{
		"global-before", "group-before", "route-before",
		"handler",
		"route-after", "group-after", "global-after",
	}, tr.list())
}

func TestMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	handlerCalled := false
	deny := func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			w := ctx.ResponseWriter()
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
			return nil
		}
	}

	r := router.New[*router.Context]()
	r.Use(deny)
	r.Get("/secret", func(ctx *router.Context) handler.Response {
		handlerCalled = true
		return text("secret")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secret", nil))

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "denied", w.Body.String())
}

func TestMiddlewareCallsNextTwice(t *testing.T) {
	t.Parallel()

	calls := 0
	retry := func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			_ = next(ctx)
			return next(ctx)
		}
	}

	r := router.New[*router.Context]()
	r.With(retry).Get("/twice", func(ctx *router.Context) handler.Response {
		calls++
		return text(strings.Repeat("x", calls))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/twice", nil))

	assert.Equal(t, 2, calls)
	assert.Equal(t, "xx", w.Body.String())
}

func TestMiddlewareComposedOnce(t *testing.T) {
	t.Parallel()

	built := 0
	counting := func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		built++
		return next
	}

	r := router.New[*router.Context]()
	r.Use(counting)
	r.Get("/a", tagged("a"))

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	}

	// once for the route and once for the not-found handler
	assert.Equal(t, 2, built)
}
