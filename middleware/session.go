package middleware

import (
	"reflect"
	"sync"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/session"
)

// sessionKeys holds one store key per session data type.
var sessionKeys sync.Map

func sessionKey[Data any]() *handler.Key[session.Session[Data]] {
	t := reflect.TypeFor[Data]()
	if k, ok := sessionKeys.Load(t); ok {
		return k.(*handler.Key[session.Session[Data]])
	}
	k, _ := sessionKeys.LoadOrStore(t, handler.NewKey[session.Session[Data]]("session"))
	return k.(*handler.Key[session.Session[Data]])
}

// SessionConfig configures the session middleware.
type SessionConfig[Data any] struct {
	Skip    func(ctx handler.Context) bool
	Manager *session.Manager[Data]
	// RequireAuth rejects anonymous sessions, RequireGuest authenticated ones.
	RequireAuth  bool
	RequireGuest bool
	// ErrorHandler renders rejections and store failures
	// (default: the error rendered with its own status).
	ErrorHandler func(ctx handler.Context, err error) handler.Response
}

// Session loads the request's session before the handler and saves it
// afterwards. Handlers change it with SetSession.
//
// The session cookie is set as a header, so a handler that writes the
// response itself must do so after its last SetSession; changes made after
// that are persisted but the rotated cookie cannot reach the client.
func Session[C handler.Context, Data any](mgr *session.Manager[Data]) handler.Middleware[C] {
	return SessionWithConfig[C](SessionConfig[Data]{Manager: mgr})
}

func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[Data]) handler.Middleware[C] {
	if cfg.Manager == nil {
		panic("session middleware: manager is required")
	}
	if cfg.RequireAuth && cfg.RequireGuest {
		panic("session middleware: RequireAuth and RequireGuest are exclusive")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, err error) handler.Response {
			return reject[C](ctx, err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Manager.Load(ctx, ctx.Request())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}
			if cfg.RequireAuth && !sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrUnauthorized)
			}
			if cfg.RequireGuest && sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrForbidden)
			}

			SetSession(ctx, sess)
			resp := next(ctx)

			current, ok := GetSession[Data](ctx)
			if !ok {
				return resp
			}
			if ctx.Sent() && current.IsModified() {
				router.Logger(ctx).WarnContext(ctx, "session changed after the response was sent",
					logger.SessionID(current.ID.String()))
			}
			if err := cfg.Manager.Save(ctx, ctx.ResponseWriter(), current); err != nil {
				router.Logger(ctx).ErrorContext(ctx, "session save failed", logger.Error(err))
				if !ctx.Sent() {
					return cfg.ErrorHandler(ctx, err)
				}
			}
			return resp
		}
	}
}

// GetSession returns the session loaded by the Session middleware.
func GetSession[Data any](ctx handler.Context) (session.Session[Data], bool) {
	return handler.Get(ctx, sessionKey[Data]())
}

// MustGetSession panics when the Session middleware did not run.
func MustGetSession[Data any](ctx handler.Context) session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session middleware: no session in context")
	}
	return sess
}

// SetSession replaces the request's session; it is saved after the handler.
func SetSession[Data any](ctx handler.Context, sess session.Session[Data]) {
	handler.Set(ctx, sessionKey[Data](), sess)
}
