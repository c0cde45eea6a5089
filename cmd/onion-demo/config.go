package main

import (
	"github.com/dmitrymomot/onion/core/cookie"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/server"
	"github.com/dmitrymomot/onion/core/session"
	"github.com/dmitrymomot/onion/integration/database/redis"
	"github.com/dmitrymomot/onion/pkg/ratelimiter"
)

type Config struct {
	Log       logger.Config
	Server    server.Config
	Router    router.Config
	Cookie    cookie.Config
	Session   session.Config
	RateLimit ratelimiter.Config
	Redis     redis.Config

	// Storage selects the session and rate limit backend: memory or redis.
	Storage     string `env:"DEMO_STORAGE" envDefault:"memory"`
	MaxUpload   int64  `env:"DEMO_MAX_UPLOAD" envDefault:"10485760"`
	Development bool   `env:"DEMO_DEVELOPMENT" envDefault:"true"`

	// CORSOrigins lists browser origins allowed to call /api. Empty disables CORS.
	CORSOrigins []string `env:"DEMO_CORS_ORIGINS" envSeparator:","`
}
