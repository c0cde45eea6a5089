// Package onion is an HTTP application framework built around a trie
// router and onion-style middleware.
//
// The core lives in sub-packages:
//
//   - core/handler: Context, Response, HandlerFunc and Middleware
//   - core/router: trie and regexp matchers, groups, dispatch
//   - core/response: text, JSON, templates, errors, SSE, streams, WebSocket
//   - core/multipart: raw multipart/form-data parsing
//   - middleware: request IDs, logging, timeouts, rate limits, sessions, metrics
//
// App wires a router and a server to the process lifecycle:
//
//	app, err := onion.New[*router.Context](
//		onion.WithLogger[*router.Context](log),
//		onion.WithServerConfig[*router.Context](cfg.Server),
//	)
//	if err != nil {
//		return err
//	}
//
//	r := app.Router()
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Get("/hello/:name", func(ctx *router.Context) handler.Response {
//		return response.String("hello " + ctx.Param("name"))
//	})
//
//	app.Go("sessions", sessions.Run)
//	app.OnStop(func(context.Context) error { return redisClient.Close() })
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	return app.Run(ctx)
//
// Plugins package reusable setup; Install runs them before Run.
package onion
