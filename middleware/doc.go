// Package middleware provides generic middleware for the router.
//
// Every constructor is parameterized by the context type, so the same
// middleware serves router.Context and custom contexts:
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.Logging[*router.Context](),
//		middleware.Metrics[*router.Context](),
//		middleware.SecurityHeaders[*router.Context](),
//		middleware.Timeout[*router.Context](10*time.Second),
//	)
//
// CORS answers preflight requests itself. Register it globally: the router
// wraps the not-found handler in global middleware only, so preflights to
// paths without an OPTIONS route still reach it.
//
// Middleware that only decorates the response sets headers on the response
// writer before calling next, so the headers reach the client however the
// handler answers.
//
// Logging, Metrics and Timeout need the final status. They render the
// handler result themselves and hand a render error back to the router,
// whose error handler then answers the client. The status they record for
// such a request is the one the error asks for through StatusCode, or 500.
//
// Default rejections (BodyLimit, ClientIP, RateLimit, Session, Timeout)
// render themselves with their own status, through the router's error
// handler when one is registered and as plain text otherwise.
//
// Values set by one middleware are read through typed accessors:
// GetRequestID, GetClientIP and GetSession.
package middleware
