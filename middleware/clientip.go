package middleware

import (
	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/pkg/clientip"
)

var clientIPKey = handler.NewKey[string]("client_ip")

// ClientIPConfig configures the client IP middleware.
type ClientIPConfig struct {
	Skip func(ctx handler.Context) bool
	// HeaderName is the response header used when StoreInHeader is set
	// (default: "X-Client-IP").
	HeaderName    string
	StoreInHeader bool
	// ValidateFunc may reject an address; the request then fails with 403.
	ValidateFunc func(ctx handler.Context, ip string) error
}

// ClientIP resolves the client address once per request and stores it for
// GetClientIP, RateLimit and Logging.
func ClientIP[C handler.Context]() handler.Middleware[C] {
	return ClientIPWithConfig[C](ClientIPConfig{})
}

func ClientIPWithConfig[C handler.Context](cfg ClientIPConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			ip := clientip.GetIP(ctx.Request())
			handler.Set(ctx, clientIPKey, ip)

			if cfg.ValidateFunc != nil {
				if err := cfg.ValidateFunc(ctx, ip); err != nil {
					return reject[C](ctx, response.ErrForbidden.WithError(err))
				}
			}
			if cfg.StoreInHeader {
				ctx.ResponseWriter().Header().Set(cfg.HeaderName, ip)
			}
			return next(ctx)
		}
	}
}

// GetClientIP returns the address stored by ClientIP.
func GetClientIP(ctx handler.Context) (string, bool) {
	return handler.Get(ctx, clientIPKey)
}

// clientIPOf prefers the stored address and resolves it otherwise.
func clientIPOf(ctx handler.Context) string {
	if ip, ok := GetClientIP(ctx); ok {
		return ip
	}
	return clientip.GetIP(ctx.Request())
}
