package router

import (
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
)

// Context is the default context implementation that delegates to the request's context.
// Custom contexts can embed *Context and be built with WithContextFactory.
// It is safe for concurrent use.
type Context struct {
	mu     sync.RWMutex
	w      http.ResponseWriter
	r      *http.Request
	params Params
	values map[any]any
	sent   bool
}

// NewContext creates a Context for one request.
func NewContext(w http.ResponseWriter, r *http.Request, params Params) *Context {
	return &Context{
		w:      w,
		r:      r,
		params: params,
	}
}

// Deadline returns the time when work done on behalf of this context should be canceled.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.Request().Context().Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled.
// Streaming handlers watch it to notice a disconnected client.
func (c *Context) Done() <-chan struct{} {
	return c.Request().Context().Done()
}

// Err returns a non-nil error value after Done is closed.
func (c *Context) Err() error {
	return c.Request().Context().Err()
}

// Value returns a value from the request store, falling back to the request's context.
func (c *Context) Value(key any) any {
	c.mu.RLock()
	v, ok := c.values[key]
	r := c.r
	c.mu.RUnlock()
	if ok {
		return v
	}
	return r.Context().Value(key)
}

// SetValue stores a request-scoped value.
func (c *Context) SetValue(key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.r
}

// SetRequest replaces the request, typically with one carrying a derived
// context. Middleware finds it through an interface assertion.
func (c *Context) SetRequest(r *http.Request) {
	if r != nil {
		c.mu.Lock()
		c.r = r
		c.mu.Unlock()
	}
}

// ResponseWriter returns the HTTP response writer associated with this context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.w
}

// SetResponseWriter replaces the response writer. Nil is ignored.
func (c *Context) SetResponseWriter(w http.ResponseWriter) {
	if w != nil {
		c.mu.Lock()
		c.w = w
		c.mu.Unlock()
	}
}

// Param returns the value of the URL parameter for the given key.
func (c *Context) Param(key string) string {
	return c.params.Get(key)
}

// Params returns a copy of the captured path parameters.
func (c *Context) Params() Params {
	return maps.Clone(c.params)
}

// Send renders resp through the response writer unless a response was already sent.
func (c *Context) Send(resp handler.Response) error {
	if resp == nil || c.Sent() {
		return nil
	}
	c.mu.RLock()
	w, r := c.w, c.r
	c.mu.RUnlock()
	// a response that only reports an error has not sent anything yet
	if err := resp(w, r); err != nil {
		return err
	}
	c.mu.Lock()
	c.sent = true
	c.mu.Unlock()
	return nil
}

// Sent reports whether a response has been written.
func (c *Context) Sent() bool {
	c.mu.RLock()
	sent, w := c.sent, c.w
	c.mu.RUnlock()
	if sent {
		return true
	}
	if ww, ok := w.(interface{ Written() bool }); ok {
		return ww.Written()
	}
	return false
}

var loggerKey = handler.NewKey[*slog.Logger]("logger")

// Logger returns the logger injected by the router for this request.
// It never returns nil.
func Logger(ctx handler.Context) *slog.Logger {
	return handler.GetOr(ctx, loggerKey, logger.Nop())
}

var patternKey = handler.NewKey[string]("route_pattern")

// RoutePattern returns the pattern of the route serving the request,
// or an empty string when no route matched.
func RoutePattern(ctx handler.Context) string {
	p, _ := handler.Get(ctx, patternKey)
	return p
}

var errorHandlerKey = handler.NewKey[any]("error_handler")

// RenderError builds the response the router's error handler produces for err.
// It reports false when the router has no error handler.
func RenderError[C handler.Context](ctx C, err error) (handler.Response, bool) {
	v, _ := handler.Get(ctx, errorHandlerKey)
	eh, ok := v.(handler.ErrorHandler[C])
	if !ok || eh == nil {
		return nil, false
	}
	return eh(ctx, err), true
}
