package middleware_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/middleware"
)

func loggedRouter(buf *bytes.Buffer, cfg middleware.LoggingConfig) router.Router[*router.Context] {
	cfg.Logger = logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelDebug))
	r := newRouter()
	r.Use(
		middleware.RequestIDWithConfig[*router.Context](middleware.RequestIDConfig{Generator: func() string { return "rid" }}),
		middleware.LoggingWithConfig[*router.Context](cfg),
	)
	return r
}

func TestLoggingSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := loggedRouter(&buf, middleware.LoggingConfig{})
	r.Get("/users/:id", func(ctx *router.Context) handler.Response {
		return response.JSON(map[string]string{"id": ctx.Param("id")})
	})

	w := serve(r, get("/users/7?expand=1"))
	require.Equal(t, http.StatusOK, w.Code)

	line := buf.String()
	for _, want := range []string{
		"level=INFO",
		`msg="request completed"`,
		"method=GET",
		"path=/users/7",
		"pattern=/users/:id",
		"status_code=200",
		"bytes_out=" + strconv.Itoa(w.Body.Len()),
		"request_id=rid",
		"client_ip=192.0.2.1",
		`query="expand=1"`,
	} {
		assert.Contains(t, line, want)
	}
	assert.Equal(t, 1, strings.Count(line, "\n"))
}

func TestLoggingErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := loggedRouter(&buf, middleware.LoggingConfig{})
	r.Get("/conflict", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrConflict)
	})
	r.Get("/boom", func(ctx *router.Context) handler.Response {
		return response.Error(errors.New("boom"))
	})

	w := serve(r, get("/conflict"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"code":"conflict","message":"Conflict"}`, w.Body.String())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status_code=409")

	buf.Reset()
	w = serve(r, get("/boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")

	buf.Reset()
	w = serve(r, get("/nowhere"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), "status_code=404")
	assert.NotContains(t, buf.String(), "pattern=")
}

func TestLoggingHandlerWroteDirectly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := loggedRouter(&buf, middleware.LoggingConfig{})
	r.Get("/", func(ctx *router.Context) handler.Response {
		_ = ctx.Send(response.StringWithStatus("made", http.StatusCreated))
		return handler.Empty()
	})

	w := serve(r, get("/"))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, buf.String(), "status_code=201")
	assert.Contains(t, buf.String(), "bytes_out=4")
}

func TestLoggingSlowAndSkipped(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := loggedRouter(&buf, middleware.LoggingConfig{
		SlowRequestThreshold: time.Millisecond,
		Skip:                 func(ctx handler.Context) bool { return ctx.Request().URL.Path == "/health" },
		LogHeaders:           true,
	})
	r.Get("/slow", func(ctx *router.Context) handler.Response {
		time.Sleep(5 * time.Millisecond)
		return response.NoContent()
	})
	r.Get("/health", ok)

	req := get("/slow")
	req.Header.Set("Authorization", "Bearer secret")
	serve(r, req)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, buf.String(), "secret")

	buf.Reset()
	serve(r, get("/health"))
	assert.Empty(t, buf.String())
}

func TestLoggingDefaultsToRouterLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := newRouter(router.WithLogger[*router.Context](logger.New(logger.WithOutput(&buf))))
	r.Use(middleware.Logging[*router.Context]())
	r.Get("/", ok)

	serve(r, get("/"))
	assert.Contains(t, buf.String(), "request completed")
}
