package response

import (
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
)

// Error returns a response that renders nothing and reports err, which routes
// the request to the router's error handler.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
