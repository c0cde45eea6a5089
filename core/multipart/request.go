package multipart

import (
	"errors"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBytes caps ParseRequest when no limit is given.
const DefaultMaxBytes int64 = 32 << 20

// ParseRequest buffers at most maxBytes of the request body and parses it.
// A maxBytes of zero or less means DefaultMaxBytes.
func ParseRequest(r *http.Request, maxBytes int64) (*Body, error) {
	ct := r.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || mt != "multipart/form-data" {
		return nil, parseError(ErrNotMultipart, ct)
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if r.ContentLength > maxBytes {
		return nil, parseError(ErrBodyTooLarge, "")
	}

	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, parseError(ErrBodyTooLarge, "")
		}
		return nil, err
	}

	return Parse(ct, data)
}
