// Package response provides handler.Response constructors: text, HTML,
// templates, JSON, files, redirects, Server-Sent Events, streams and
// WebSocket upgrades, plus error handlers for the router.
//
//	r.Get("/users/:id", func(ctx *router.Context) handler.Response {
//		u, err := users.Find(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(response.ErrNotFound.WithError(err))
//		}
//		return response.JSON(u)
//	})
//
// Buffered responses (JSON, templates) encode before writing, so encoding
// errors arrive at the error handler while the response can still change.
//
// # Errors
//
// Error hands an error to the router. ErrorHandler and JSONErrorHandler turn
// it into a response: HTTPError values render as themselves, errors with a
// StatusCode() int method map to the matching predefined HTTPError, anything
// else becomes 500. Server errors are logged with the request logger and
// their causes are not exposed to the client.
//
//	r := router.New(router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
package response
