package response

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("response: streaming unsupported")

// Stream gives fn direct access to the response body. Whatever fn writes is
// flushed when it returns. fn may flush earlier through http.Flusher.
func Stream(fn func(w io.Writer) error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		flusher, ok := w.(http.Flusher)
		if !ok {
			return ErrStreamingUnsupported
		}

		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		// the status is already out; the error goes to the router for logging
		if err := fn(w); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}
}

type streamJSONConfig struct {
	onError func(context.Context, error)
}

// StreamOption configures StreamJSON.
type StreamOption func(*streamJSONConfig)

// WithStreamErrorHandler receives per-item encoding errors.
func WithStreamErrorHandler(fn func(context.Context, error)) StreamOption {
	return func(s *streamJSONConfig) { s.onError = fn }
}

// StreamJSON writes newline-delimited JSON, one line per item, flushing after
// each. Items that fail to encode are skipped.
func StreamJSON(items <-chan any, opts ...StreamOption) handler.Response {
	cfg := &streamJSONConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		flusher, ok := w.(http.Flusher)
		if !ok {
			return ErrStreamingUnsupported
		}

		h := w.Header()
		h.Set("Content-Type", "application/x-ndjson")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return nil

			case item, ok := <-items:
				if !ok {
					return nil
				}
				line, err := json.Marshal(item)
				if err != nil {
					if cfg.onError != nil {
						cfg.onError(ctx, fmt.Errorf("encode item: %w", err))
					}
					continue
				}
				if _, err := w.Write(append(line, '\n')); err != nil {
					return err
				}
				flusher.Flush()
			}
		}
	}
}
