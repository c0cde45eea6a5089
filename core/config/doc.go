// Package config loads env-tagged structs, once per type.
//
// Every onion package that needs settings exposes a Config struct with
// caarlos0/env tags (server.Config, logger.Config, cookie.Config, ...). An
// application nests them and loads the whole tree in one call:
//
//	type Config struct {
//		Server  server.Config
//		Log     logger.Config
//		Session session.Config
//		Storage string `env:"APP_STORAGE" envDefault:"memory"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// The first Load reads .env from the working directory with godotenv.
// Variables already present in the environment win over the file.
//
// Later calls for the same type return the cached value without touching
// the environment again. Reset drops the cache; tests call it after
// t.Setenv.
//
// Parse failures wrap ErrParse.
package config
