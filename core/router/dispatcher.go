package router

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
)

// fallbackBody is written when an error cannot be handled any other way.
const fallbackBody = "Internal Server Error"

// dispatcher turns one request into exactly one response.
// It owns the route table and the configuration shared by the root router and its groups.
type dispatcher[C handler.Context] struct {
	matcher      Matcher[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	notFound     handler.HandlerFunc[C]
	newContext   func(http.ResponseWriter, *http.Request, Params) C
	logger       *slog.Logger
	override     *MethodOverride

	hasRoutes bool
	frozen    atomic.Bool

	notFoundOnce     sync.Once
	composedNotFound handler.HandlerFunc[C]
}

func newDispatcher[C handler.Context](opts ...Option[C]) *dispatcher[C] {
	d := &dispatcher[C]{
		matcher: NewTrie[C](),
		logger:  logger.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	// Only the default *Context can be built without a factory
	if d.newContext == nil {
		var zero C
		if _, ok := any(zero).(*Context); !ok {
			panic(ErrNoContextFactory)
		}
		d.newContext = func(w http.ResponseWriter, r *http.Request, params Params) C {
			return any(NewContext(w, r, params)).(C)
		}
	}

	return d
}

// register stores an already composed handler. Configuration errors panic.
func (d *dispatcher[C]) register(method, pattern string, h handler.HandlerFunc[C]) {
	if d.frozen.Load() {
		panic(ErrRouterFrozen)
	}
	if err := d.matcher.Add(method, pattern, h); err != nil {
		panic(err)
	}
	d.hasRoutes = true
}

// ServeHTTP implements http.Handler interface.
func (d *dispatcher[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.frozen.Store(true)
	d.notFoundOnce.Do(d.composeNotFound)

	ww := newResponseWriter(w)

	method := r.Method
	if d.override != nil {
		method = d.override.Resolve(r)
	}

	// the escaped form keeps %2F inside a segment
	path := r.URL.Path
	escaped := r.URL.RawPath != ""
	if escaped {
		path = r.URL.RawPath
	}
	if path == "" {
		path = "/"
	}

	fn := d.composedNotFound
	var params Params
	var pattern string
	if m := d.matcher.Match(method, path); m != nil {
		fn = m.Handler
		params = m.Params
		pattern = m.Pattern
		if escaped {
			unescapeParams(params)
		}
	} else {
		d.logMiss(r, method, path)
	}

	ctx := d.newContext(ww, r, params)
	handler.Set(ctx, loggerKey, d.logger)
	handler.Set(ctx, patternKey, pattern)
	if d.errorHandler != nil {
		handler.Set[any](ctx, errorHandlerKey, d.errorHandler)
	}

	err := d.invoke(ctx, ww, r, fn)
	if err == nil {
		return
	}

	if sent(ctx, ww) {
		// nothing left to communicate to the client
		d.logger.ErrorContext(r.Context(), "error after response was sent",
			logger.Method(method),
			logger.Path(r.URL.Path),
			logger.StatusCode(ww.Status()),
			logger.Error(err),
		)
		return
	}

	d.handleError(ctx, ww, r, err)
}

// invoke runs the composed handler and renders its result.
// Panics are converted to PanicError.
func (d *dispatcher[C]) invoke(ctx C, ww *responseWriter, r *http.Request, fn handler.HandlerFunc[C]) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()

	return d.render(ctx, ww, r, fn(ctx))
}

// render applies the result rules: a nil result means the handler wrote the
// response itself, and a result returned after a write is discarded.
func (d *dispatcher[C]) render(ctx C, ww *responseWriter, r *http.Request, resp handler.Response) error {
	if resp == nil {
		if sent(ctx, ww) {
			return nil
		}
		return ErrNilResponse
	}

	if sent(ctx, ww) {
		d.logger.DebugContext(r.Context(), "discarding response returned after the response was sent",
			logger.Path(r.URL.Path),
			logger.StatusCode(ww.Status()),
		)
		return nil
	}

	return ctx.Send(resp)
}

func (d *dispatcher[C]) handleError(ctx C, ww *responseWriter, r *http.Request, err error) {
	if d.errorHandler == nil {
		d.logger.ErrorContext(r.Context(), "unhandled request error",
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		writeFallback(ww)
		return
	}

	herr := d.invokeErrorHandler(ctx, ww, r, err)
	if herr == nil {
		return
	}

	d.logger.ErrorContext(r.Context(), "error handler failed",
		logger.Path(r.URL.Path),
		logger.Errors(err, herr),
	)
	if !ww.Written() {
		writeFallback(ww)
	}
}

func (d *dispatcher[C]) invokeErrorHandler(ctx C, ww *responseWriter, r *http.Request, cause error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()

	return d.render(ctx, ww, r, d.errorHandler(ctx, cause))
}

// unescapeParams decodes values captured from an escaped path.
// Values that do not decode are kept as captured.
func unescapeParams(params Params) {
	for k, v := range params {
		if u, err := url.PathUnescape(v); err == nil {
			params[k] = u
		}
	}
}

// logMiss records at debug level which methods the path would have served.
func (d *dispatcher[C]) logMiss(r *http.Request, method, path string) {
	if !d.logger.Enabled(r.Context(), slog.LevelDebug) {
		return
	}
	var allowed []string
	if mm, ok := d.matcher.(interface{ Methods(string) []string }); ok {
		allowed = mm.Methods(path)
	}
	d.logger.DebugContext(r.Context(), "no route matched",
		logger.Method(method),
		logger.Path(path),
		logger.Key("allowed_methods", allowed),
	)
}

func (d *dispatcher[C]) composeNotFound() {
	h := d.notFound
	if h == nil {
		h = defaultNotFound[C]
	}
	d.composedNotFound = chain(d.middlewares, h)
}

func defaultNotFound[C handler.Context](ctx C) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte(http.StatusText(http.StatusNotFound)))
		return err
	}
}

func writeFallback(w http.ResponseWriter) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(fallbackBody))
}

func sent[C handler.Context](ctx C, ww *responseWriter) bool {
	return ww.Written() || ctx.Sent()
}
