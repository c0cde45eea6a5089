package cookie

import "net/http"

// Config is the env-tagged cookie configuration.
// COOKIE_SECRETS is a comma separated list, newest secret first.
type Config struct {
	Secrets  []string `env:"COOKIE_SECRETS" envSeparator:","`
	Path     string   `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string   `env:"COOKIE_DOMAIN"`
	MaxAge   int      `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool     `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool     `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite string   `env:"COOKIE_SAME_SITE" envDefault:"lax"`
	MaxSize  int      `env:"COOKIE_MAX_SIZE" envDefault:"4096"`
}

// NewFromConfig creates a Manager from cfg. Options in opts are applied
// after the config values.
func NewFromConfig(cfg Config, opts ...ManagerOption) (*Manager, error) {
	base := []ManagerOption{
		WithMaxSize(cfg.MaxSize),
		WithDefaults(
			WithPath(cfg.Path),
			WithDomain(cfg.Domain),
			WithMaxAge(cfg.MaxAge),
			WithSecure(cfg.Secure),
			WithHTTPOnly(cfg.HttpOnly),
			WithSameSite(ParseSameSite(cfg.SameSite)),
		),
	}
	return New(cfg.Secrets, append(base, opts...)...)
}

// ParseSameSite maps "strict", "lax" and "none" to http.SameSite.
// Anything else yields http.SameSiteDefaultMode.
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "strict", "Strict":
		return http.SameSiteStrictMode
	case "lax", "Lax":
		return http.SameSiteLaxMode
	case "none", "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
