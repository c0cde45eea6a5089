package response

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/onion/core/handler"
)

type wsConfig struct {
	upgrader       websocket.Upgrader
	responseHeader http.Header
	onConnect      func(context.Context, *websocket.Conn) error
	onDisconnect   func(context.Context, *websocket.Conn)
	onError        func(context.Context, error)
}

// WebSocketOption configures WebSocket.
type WebSocketOption func(*wsConfig)

func WithWSBufferSizes(read, write int) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.ReadBufferSize = read
		c.upgrader.WriteBufferSize = write
	}
}

func WithWSHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(c *wsConfig) { c.upgrader.HandshakeTimeout = timeout }
}

// WithWSOriginCheck replaces the default same-origin check.
func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(c *wsConfig) { c.upgrader.CheckOrigin = fn }
}

func WithWSSubprotocols(protocols ...string) WebSocketOption {
	return func(c *wsConfig) { c.upgrader.Subprotocols = protocols }
}

func WithWSUpgradeHeaders(header http.Header) WebSocketOption {
	return func(c *wsConfig) { c.responseHeader = header }
}

func WithWSOnConnect(fn func(context.Context, *websocket.Conn) error) WebSocketOption {
	return func(c *wsConfig) { c.onConnect = fn }
}

func WithWSOnDisconnect(fn func(context.Context, *websocket.Conn)) WebSocketOption {
	return func(c *wsConfig) { c.onDisconnect = fn }
}

// WithWSErrorHandler receives errors raised after the upgrade.
func WithWSErrorHandler(fn func(context.Context, error)) WebSocketOption {
	return func(c *wsConfig) { c.onError = fn }
}

// WebSocket upgrades the connection and runs serve until it returns.
// A failed handshake has already been answered by the upgrader, so it is not
// reported to the router's error handler.
func WebSocket(serve func(context.Context, *websocket.Conn) error, opts ...WebSocketOption) handler.Response {
	cfg := &wsConfig{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		report := func(err error) {
			if cfg.onError != nil && err != nil {
				cfg.onError(ctx, err)
			}
		}

		conn, err := cfg.upgrader.Upgrade(w, r, cfg.responseHeader)
		if err != nil {
			report(err)
			return nil
		}
		defer func() {
			_ = conn.Close()
			if cfg.onDisconnect != nil {
				cfg.onDisconnect(ctx, conn)
			}
		}()

		if cfg.onConnect != nil {
			if err := cfg.onConnect(ctx, conn); err != nil {
				report(err)
				return nil
			}
		}

		report(serve(ctx, conn))
		return nil
	}
}

// EchoWebSocket writes every received message back to the sender.
func EchoWebSocket(opts ...WebSocketOption) handler.Response {
	return WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				var ce *websocket.CloseError
				if errors.As(err, &ce) && (ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return err
			}
		}
	}, opts...)
}
