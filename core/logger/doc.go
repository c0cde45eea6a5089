// Package logger builds slog loggers and provides attribute helpers shared by
// the router, the server and the middleware.
//
// Loggers are passed explicitly. Nothing in this module reads slog.Default;
// components fall back to Nop when none is supplied.
//
//	log := logger.New(
//		logger.WithProduction("api"),
//		logger.WithContextValue("request_id", requestIDKey),
//	)
//
//	log.Info("request completed",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.StatusCode(200),
//		logger.Duration(time.Since(start)),
//	)
//
// FromConfig builds the same logger from environment settings (LOG_LEVEL,
// LOG_FORMAT, SERVICE_NAME, APP_ENV).
package logger
