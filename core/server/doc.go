// Package server runs an http.Handler with production timeouts and graceful
// shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx, router)
//
// Run blocks until ctx is cancelled, then stops accepting connections and
// waits up to the shutdown timeout for in-flight requests. It returns nil
// after a clean shutdown, which makes it a drop-in errgroup member.
//
// HTTPS is enabled with WithTLS, or with SERVER_TLS_CERT_FILE and
// SERVER_TLS_KEY_FILE when built from Config. DefaultTLSConfig and
// ModernTLSConfig are hardened starting points.
//
// Certificates can also come from Let's Encrypt. Set SERVER_AUTOCERT_DOMAINS
// or build a manager directly:
//
//	m, err := server.NewAutocertManager(server.AutocertConfig{
//		Email:    "ops@example.com",
//		Domains:  []string{"example.com"},
//		CacheDir: "/var/lib/app/certs",
//	})
//	srv := server.New(":443", server.WithAutocert(m))
//
// tls-alpn-01 challenges are answered on that listener. Serve ChallengeHandler
// on :80 when http-01 is needed.
package server
