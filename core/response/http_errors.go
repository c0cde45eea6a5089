package response

import (
	"net/http"
	"strings"
)

// HTTPError is an error with an HTTP status and a machine-readable code.
// It is the JSON body written by JSONErrorHandler.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError creates a 500 error with a custom message.
func NewHTTPError(message string) HTTPError {
	return ErrInternalServerError.WithMessage(message)
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error carrying err's text as details.cause.
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

// httpErrorsByStatus holds every predefined error keyed by status.
var httpErrorsByStatus = map[int]HTTPError{}

func newHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	code := strings.ReplaceAll(strings.ToLower(text), " ", "_")
	code = strings.ReplaceAll(code, "-", "_")
	code = strings.ReplaceAll(code, "'", "")
	e := HTTPError{Status: status, Code: code, Message: text}
	httpErrorsByStatus[status] = e
	return e
}

// Predefined errors. Messages default to http.StatusText.
var (
	ErrBadRequest            = newHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = newHTTPError(http.StatusUnauthorized)
	ErrPaymentRequired       = newHTTPError(http.StatusPaymentRequired)
	ErrForbidden             = newHTTPError(http.StatusForbidden)
	ErrNotFound              = newHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = newHTTPError(http.StatusMethodNotAllowed)
	ErrNotAcceptable         = newHTTPError(http.StatusNotAcceptable)
	ErrRequestTimeout        = newHTTPError(http.StatusRequestTimeout)
	ErrConflict              = newHTTPError(http.StatusConflict)
	ErrGone                  = newHTTPError(http.StatusGone)
	ErrLengthRequired        = newHTTPError(http.StatusLengthRequired)
	ErrPreconditionFailed    = newHTTPError(http.StatusPreconditionFailed)
	ErrRequestEntityTooLarge = newHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnsupportedMediaType  = newHTTPError(http.StatusUnsupportedMediaType)
	ErrTeapot                = newHTTPError(http.StatusTeapot)
	ErrUnprocessableEntity   = newHTTPError(http.StatusUnprocessableEntity)
	ErrLocked                = newHTTPError(http.StatusLocked)
	ErrTooEarly              = newHTTPError(http.StatusTooEarly)
	ErrUpgradeRequired       = newHTTPError(http.StatusUpgradeRequired)
	ErrTooManyRequests       = newHTTPError(http.StatusTooManyRequests)

	ErrInternalServerError = newHTTPError(http.StatusInternalServerError)
	ErrNotImplemented      = newHTTPError(http.StatusNotImplemented)
	ErrBadGateway          = newHTTPError(http.StatusBadGateway)
	ErrServiceUnavailable  = newHTTPError(http.StatusServiceUnavailable)
	ErrGatewayTimeout      = newHTTPError(http.StatusGatewayTimeout)
)
