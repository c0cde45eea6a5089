// Package handler provides the primitive types every other package consumes:
// the request Context, the Response renderer, type-safe handlers, error
// handlers and middleware.
//
// # Core Types
//
//	// Response renders an HTTP response
//	type Response func(w http.ResponseWriter, r *http.Request) error
//
//	// Type-safe handler with custom context
//	type HandlerFunc[C Context] func(ctx C) Response
//
//	// Error handling function
//	type ErrorHandler[C Context] func(ctx C, err error) Response
//
//	// Middleware function for handler composition
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// # Handler Results
//
// A handler either returns a Response to be rendered by the router, or nil
// when it has already written the response itself:
//
//	func download(ctx *router.Context) handler.Response {
//		_ = ctx.Send(response.Bytes(data, "application/octet-stream"))
//		return handler.Empty()
//	}
//
// Only the first terminal write of a request reaches the client. A Response
// returned after the handler already wrote is ignored.
//
// # Middleware
//
// Middleware receives the next handler and returns a new one. It may call
// next once (the usual case), skip it to short-circuit, or call it several
// times:
//
//	func Auth[C handler.Context]() handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				if ctx.Request().Header.Get("Authorization") == "" {
//					return response.Error(response.ErrUnauthorized)
//				}
//				return next(ctx)
//			}
//		}
//	}
//
// # Typed Values
//
// Middleware passes data to handlers through the request-scoped store.
// Key gives the store a typed interface:
//
//	var userKey = handler.NewKey[*User]("user")
//
//	handler.Set(ctx, userKey, user)
//	user, ok := handler.Get(ctx, userKey)
package handler
