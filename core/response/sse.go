package response

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/onion/core/handler"
)

// DefaultSSEKeepAlive is the default keep-alive interval for SSE connections.
const DefaultSSEKeepAlive = 30 * time.Second

type sseConfig struct {
	eventName   string
	eventID     string
	idGen       func(any) string
	reconnect   time.Duration
	keepAlive   time.Duration
	noKeepAlive bool
	onError     func(context.Context, error)
}

// EventOption configures Server-Sent Events behavior.
type EventOption func(*sseConfig)

// WithEventName sets the event name for SSE events.
func WithEventName(name string) EventOption {
	return func(s *sseConfig) { s.eventName = name }
}

// WithEventID sets a fixed event ID for all SSE events.
func WithEventID(id string) EventOption {
	return func(s *sseConfig) { s.eventID = id }
}

// WithEventIDGenerator derives each event ID from its data.
func WithEventIDGenerator(fn func(data any) string) EventOption {
	return func(s *sseConfig) { s.idGen = fn }
}

// WithReconnectTime sends a retry field telling clients how long to wait before reconnecting.
func WithReconnectTime(d time.Duration) EventOption {
	return func(s *sseConfig) { s.reconnect = d }
}

// WithKeepAlive sets the keep-alive comment interval.
func WithKeepAlive(interval time.Duration) EventOption {
	return func(s *sseConfig) { s.keepAlive = interval }
}

// WithoutKeepAlive disables keep-alive comments.
func WithoutKeepAlive() EventOption {
	return func(s *sseConfig) { s.noKeepAlive = true }
}

// WithSSEErrorHandler receives errors raised while streaming. The stream
// itself cannot report them once started.
func WithSSEErrorHandler(fn func(context.Context, error)) EventOption {
	return func(s *sseConfig) { s.onError = fn }
}

// SSE streams events from a channel until it is closed or the client goes away.
// Strings and byte slices are sent as is; other values are JSON encoded.
func SSE(events <-chan any, opts ...EventOption) handler.Response {
	cfg := &sseConfig{keepAlive: DefaultSSEKeepAlive}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		flusher, ok := w.(http.Flusher)
		if !ok {
			return ErrStreamingUnsupported
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		ctx := r.Context()
		report := func(err error) {
			if cfg.onError != nil {
				cfg.onError(ctx, err)
			}
		}

		preamble := ": connected\n\n"
		if cfg.reconnect > 0 {
			preamble = "retry: " + strconv.FormatInt(cfg.reconnect.Milliseconds(), 10) + "\n\n"
		}
		if _, err := w.Write([]byte(preamble)); err != nil {
			report(fmt.Errorf("write preamble: %w", err))
			return nil
		}
		flusher.Flush()

		var tick <-chan time.Time
		var ticker *time.Ticker
		if !cfg.noKeepAlive && cfg.keepAlive > 0 {
			ticker = time.NewTicker(cfg.keepAlive)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return nil

			case <-tick:
				if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
					report(fmt.Errorf("write keepalive: %w", err))
					return nil
				}
				flusher.Flush()

			case data, ok := <-events:
				if !ok {
					return nil
				}
				if ticker != nil {
					ticker.Reset(cfg.keepAlive)
				}
				frame, err := encodeEvent(data, cfg)
				if err != nil {
					report(fmt.Errorf("encode event: %w", err))
					continue
				}
				if _, err := w.Write(frame); err != nil {
					report(fmt.Errorf("write event: %w", err))
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

// encodeEvent builds one event frame. Multi-line data is split into several
// data fields as the event-stream format requires.
func encodeEvent(data any, cfg *sseConfig) ([]byte, error) {
	var payload []byte
	switch v := data.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	var buf bytes.Buffer
	if cfg.eventName != "" {
		buf.WriteString("event: " + cfg.eventName + "\n")
	}
	id := cfg.eventID
	if cfg.idGen != nil {
		id = cfg.idGen(data)
	}
	if id != "" {
		buf.WriteString("id: " + id + "\n")
	}
	for line := range bytes.SplitSeq(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
