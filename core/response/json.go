package response

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/dmitrymomot/onion/core/handler"
)

// json mirrors encoding/json behavior, including HTML escaping and sorted map keys.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON creates an application/json response with 200 OK status.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus creates an application/json response with custom status code.
// A zero status means 200, or 204 when v is nil.
//
// The value is encoded before anything is written, so an encoding failure
// reaches the error handler with the response still unsent.
func JSONWithStatus(v any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status == 0 {
			status = http.StatusOK
			if v == nil {
				status = http.StatusNoContent
			}
		}

		if !bodyAllowed(status) {
			return write(w, status, contentTypeJSON, nil)
		}

		body, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return write(w, status, contentTypeJSON, append(body, '\n'))
	}
}
