package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/router"
)

// statusCode is implemented by errors that choose their own HTTP status,
// such as HTTPError and multipart.ParseError.
type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error to an HTTPError.
// Errors that are not HTTPError keep their text only as details.cause, and
// only for client errors; server error causes are never exposed.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	if base.Status >= http.StatusInternalServerError {
		return base
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text. Use it with router.WithErrorHandler.
func ErrorHandler[C handler.Context](ctx C, err error) handler.Response {
	httpErr := convertToHTTPError(err)
	logServerError(ctx, err, httpErr.Status)
	return StringWithStatus(httpErr.Error(), httpErr.Status)
}

// JSONErrorHandler renders errors as HTTPError JSON bodies.
func JSONErrorHandler[C handler.Context](ctx C, err error) handler.Response {
	httpErr := convertToHTTPError(err)
	logServerError(ctx, err, httpErr.Status)
	return JSONWithStatus(httpErr, httpErr.Status)
}

func logServerError[C handler.Context](ctx C, err error, status int) {
	if status < http.StatusInternalServerError {
		return
	}
	r := ctx.Request()
	router.Logger(ctx).ErrorContext(ctx, "request failed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.StatusCode(status),
		logger.Error(err),
		logger.Stack(router.StackTrace(err)),
	)
}
