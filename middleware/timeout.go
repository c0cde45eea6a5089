package middleware

import (
	"bytes"
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
)

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Skip    func(ctx handler.Context) bool
	Timeout time.Duration
	// ErrorHandler builds the response for a request that ran out of time
	// (default: 503 Service Unavailable).
	ErrorHandler func(ctx handler.Context) handler.Response
}

// Timeout runs the rest of the chain in a goroutine with a context bounded
// by d. When d passes first, the client gets the timeout response at once.
// The handler keeps running until it returns, but its writes are discarded,
// so handlers should still watch ctx.Done() to stop early.
//
// The response is buffered until the handler finishes, so skip long-lived
// responses such as SSE and WebSocket.
//
// The context type must be able to swap its request and response writer
// (router.Context can); otherwise Timeout panics when the middleware is built.
func Timeout[C handler.Context](d time.Duration) handler.Middleware[C] {
	return TimeoutWithConfig[C](TimeoutConfig{Timeout: d})
}

func TimeoutWithConfig[C handler.Context](cfg TimeoutConfig) handler.Middleware[C] {
	if cfg.Timeout <= 0 {
		panic("timeout middleware: timeout must be positive")
	}
	if !canSetRequest[C]() || !canSetResponseWriter[C]() {
		panic("timeout middleware: context type cannot replace its request and response writer")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context) handler.Response {
			return reject[C](ctx, response.ErrServiceUnavailable.WithMessage("Request timed out"))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			orig, w := ctx.Request(), ctx.ResponseWriter()
			tctx, cancel := context.WithTimeout(orig.Context(), cfg.Timeout)
			defer cancel()

			tw := newTimeoutWriter(w)
			any(ctx).(requestSetter).SetRequest(orig.WithContext(tctx))
			any(ctx).(responseWriterSetter).SetResponseWriter(tw)
			restore := func() {
				any(ctx).(requestSetter).SetRequest(orig)
				any(ctx).(responseWriterSetter).SetResponseWriter(w)
			}

			done := make(chan error, 1)
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						if tw.isTimedOut() {
							router.Logger(ctx).ErrorContext(ctx, "handler panicked after the request timed out",
								logger.Key("panic", p))
							return
						}
						panicked <- p
					}
				}()
				resp := next(ctx)
				var err error
				if resp != nil && !ctx.Sent() {
					err = ctx.Send(resp)
				}
				done <- err
			}()

			select {
			case p := <-panicked:
				restore()
				panic(p)

			case err := <-done:
				restore()
				if ferr := tw.flush(); ferr != nil {
					router.Logger(ctx).ErrorContext(ctx, "writing buffered response failed", logger.Error(ferr))
				}
				if err != nil {
					return replay(err)
				}
				return nil

			case <-tctx.Done():
				// the request and writer stay swapped: the handler still holds ctx
				tw.timeout()
				writeTimeout(ctx, cfg.ErrorHandler(ctx), w, orig)
				return nil
			}
		}
	}
}

// writeTimeout renders resp straight to the underlying writer, falling back
// to the error's own status and then to a bare 503.
func writeTimeout[C handler.Context](ctx C, resp handler.Response, w http.ResponseWriter, r *http.Request) {
	err := resp(w, r)
	if err != nil && !hasWritten(w) {
		err = reject[C](ctx, err)(w, r)
	}
	if err == nil {
		return
	}
	router.Logger(ctx).ErrorContext(ctx, "rendering timeout response failed", logger.Error(err))
	if !hasWritten(w) {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	}
}

func hasWritten(w http.ResponseWriter) bool {
	ww, ok := w.(interface{ Written() bool })
	return ok && ww.Written()
}

// timeoutWriter buffers the handler's response until it finishes in time.
// Once the deadline passes it rejects writes and reports the state of the
// underlying writer instead.
type timeoutWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu          sync.Mutex
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, header: w.Header().Clone()}
}

// Header returns a detached map once the deadline passed.
func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return make(http.Header)
	}
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.status, tw.wroteHeader = status, true
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.status, tw.wroteHeader = http.StatusOK, true
	}
	return tw.buf.Write(b)
}

func (tw *timeoutWriter) Written() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return hasWritten(tw.w)
	}
	return tw.wroteHeader
}

func (tw *timeoutWriter) Status() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		if sw, ok := tw.w.(statusWriter); ok {
			return sw.Status()
		}
		return 0
	}
	return tw.status
}

func (tw *timeoutWriter) Size() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		if sw, ok := tw.w.(statusWriter); ok {
			return sw.Size()
		}
		return 0
	}
	return tw.buf.Len()
}

func (tw *timeoutWriter) timeout() {
	tw.mu.Lock()
	tw.timedOut = true
	tw.mu.Unlock()
}

func (tw *timeoutWriter) isTimedOut() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.timedOut
}

// flush copies the buffered headers and body to the underlying writer.
// Only call it after the handler returned.
func (tw *timeoutWriter) flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	dst := tw.w.Header()
	for k := range dst {
		if _, ok := tw.header[k]; !ok {
			delete(dst, k)
		}
	}
	maps.Copy(dst, tw.header)

	if !tw.wroteHeader {
		return nil
	}
	tw.w.WriteHeader(tw.status)
	_, err := tw.w.Write(tw.buf.Bytes())
	return err
}
