package session

import "time"

// Config is the env-tagged session configuration.
type Config struct {
	// TTL is the idle timeout.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	// TouchInterval throttles expiration updates. Zero extends on every request.
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	// CleanupInterval is how often Manager.Run purges expired sessions.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}

func defaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		TouchInterval:   5 * time.Minute,
		CookieName:      "sid",
		CleanupInterval: 10 * time.Minute,
	}
}

// Option configures a Manager.
type Option func(*Config)

func WithTTL(ttl time.Duration) Option {
	return func(c *Config) {
		if ttl > 0 {
			c.TTL = ttl
		}
	}
}

// WithTouchInterval sets the minimum time between expiration updates.
func WithTouchInterval(interval time.Duration) Option {
	return func(c *Config) { c.TouchInterval = interval }
}

func WithCookieName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.CookieName = name
		}
	}
}

func WithCleanupInterval(interval time.Duration) Option {
	return func(c *Config) { c.CleanupInterval = interval }
}

// WithConfig applies every non-zero field of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		WithTTL(cfg.TTL)(c)
		WithCookieName(cfg.CookieName)(c)
		c.TouchInterval = cfg.TouchInterval
		if cfg.CleanupInterval > 0 {
			c.CleanupInterval = cfg.CleanupInterval
		}
	}
}
