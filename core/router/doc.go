// Package router maps HTTP requests to type-safe handlers and runs them inside
// composed middleware.
//
// # Patterns
//
//	/users                literal
//	/users/:id            one segment bound to "id"
//	/posts/:id?           optional final segment; matches /posts and /posts/7
//	/files/*path          remainder of the path, slashes included
//	/items/:id(\d+)       custom parameter pattern, regexp matcher only
//
// The default matcher is a segment trie. At each position it prefers a literal
// segment over a parameter over a wildcard, and backtracks out of parameter
// branches that do not end at a handler for the request method. So with both
// /users/active and /users/:id registered, /users/active hits the literal
// route. Trailing and repeated slashes are ignored.
//
// NewRegexp returns an alternative matcher that tries routes in registration
// order and supports custom parameter patterns:
//
//	r := router.New(router.WithMatcher[*router.Context](router.NewRegexp[*router.Context]()))
//
// # Handlers and Results
//
// A handler returns a handler.Response, which the router renders, or nil when
// it already wrote the response itself. Only the first write reaches the
// client; a result returned after a write is dropped.
//
//	r.Get("/users/:id", func(ctx *router.Context) handler.Response {
//		return response.JSON(users.Get(ctx.Param("id")))
//	})
//
// A nil result with nothing written is an error (ErrNilResponse).
//
// # Middleware
//
// Middleware is composed once, when a route is registered. Global middleware
// wraps group middleware, which wraps route middleware added with With:
//
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Route("/admin", func(r router.Router[*router.Context]) {
//		r.Use(requireAdmin)
//		r.With(audit).Delete("/users/:id", deleteUser)
//	})
//
// Use must precede the routes it should wrap and panics otherwise.
// The route table is frozen by the first ServeHTTP call.
//
// # Errors
//
// Errors returned while rendering, and recovered panics, go to the handler set
// with WithErrorHandler. Panics arrive as PanicError; StackTrace returns the
// captured stack. Without an error handler, or when the error handler fails,
// the client receives a plain 500 "Internal Server Error". Errors raised after
// the response was sent are logged and dropped.
//
// # Method Override
//
// WithMethodOverride lets a POST stand in for PUT, PATCH or DELETE. The
// X-HTTP-Method-Override header wins over the _method query parameter, which
// wins over the _method form field.
//
// # Custom Contexts
//
// Any type implementing handler.Context can be used with WithContextFactory:
//
//	type AppContext struct {
//		*router.Context
//		User *User
//	}
//
//	r := router.New[*AppContext](
//		router.WithContextFactory(func(w http.ResponseWriter, r *http.Request, p router.Params) *AppContext {
//			return &AppContext{Context: router.NewContext(w, r, p)}
//		}),
//	)
package router
