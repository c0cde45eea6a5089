package binder

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/dmitrymomot/onion/core/handler"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxJSONSize caps JSON bodies.
const DefaultMaxJSONSize int64 = 1 << 20

// JSON decodes an application/json body of at most DefaultMaxJSONSize
// bytes. Unknown fields and trailing data are rejected.
func JSON() Binder {
	return JSONWithLimit(DefaultMaxJSONSize)
}

func JSONWithLimit(maxBytes int64) Binder {
	return func(ctx handler.Context, v any) error {
		r := ctx.Request()
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return bindError(ErrMissingContentType, "", "expected application/json")
		}
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return bindError(ErrUnsupportedMediaType, "", ct)
		}

		body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBytes))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return bindError(ErrBodyTooLarge, "", "")
			}
			return bindError(ErrFailedToParseJSON, "", err.Error())
		}
		if len(body) == 0 {
			return bindError(ErrFailedToParseJSON, "", "empty body")
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return bindError(ErrFailedToParseJSON, "", err.Error())
		}
		if dec.More() {
			return bindError(ErrFailedToParseJSON, "", "unexpected data after JSON value")
		}
		return nil
	}
}
