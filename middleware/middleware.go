package middleware

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
)

// outcome is what an observing middleware learns about a finished request.
type outcome struct {
	status int
	size   int
	err    error
}

type statusWriter interface {
	Status() int
	Size() int
}

type statusCoder interface {
	StatusCode() int
}

// settle renders resp inside the middleware so the final status is known
// before control returns to the router. The returned Response is what the
// middleware hands back: nil once the response is out, or one that replays
// the render error so the router's error handler still runs.
func settle[C handler.Context](ctx C, resp handler.Response) (outcome, handler.Response) {
	var err error
	if resp != nil && !ctx.Sent() {
		err = ctx.Send(resp)
	}

	var o outcome
	o.err = err
	if ctx.Sent() {
		if sw, ok := ctx.ResponseWriter().(statusWriter); ok {
			o.status, o.size = sw.Status(), sw.Size()
		}
		if o.status == 0 {
			o.status = http.StatusOK
		}
		if err != nil {
			// the router would discard a replayed error at this point
			r := ctx.Request()
			router.Logger(ctx).ErrorContext(ctx, "error after response was sent",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Error(err),
			)
		}
		return o, nil
	}

	if err == nil {
		// nil result with nothing written; the router reports it
		o.err = router.ErrNilResponse
		o.status = http.StatusInternalServerError
		return o, nil
	}

	o.status = errorStatus(err)
	return o, replay(err)
}

// errorStatus predicts the status an error handler will pick.
func errorStatus(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code < 600 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// reject builds a response that renders err with its own status. It uses
// the router's error handler when one is registered and plain text otherwise,
// so built-in rejections keep their status on a bare router.
func reject[C handler.Context](ctx handler.Context, err error) handler.Response {
	if c, ok := ctx.(C); ok {
		if resp, ok := router.RenderError(c, err); ok {
			return resp
		}
	}
	return response.ErrorHandler(ctx, err)
}

func replay(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error { return err }
}

// requestSetter is implemented by contexts that can swap their request.
type requestSetter interface {
	SetRequest(r *http.Request)
}

func canSetRequest[C handler.Context]() bool {
	var zero C
	_, ok := any(zero).(requestSetter)
	return ok
}

// responseWriterSetter is implemented by contexts that can swap their writer.
type responseWriterSetter interface {
	SetResponseWriter(w http.ResponseWriter)
}

func canSetResponseWriter[C handler.Context]() bool {
	var zero C
	_, ok := any(zero).(responseWriterSetter)
	return ok
}
