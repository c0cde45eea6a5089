package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse wraps failures from the environment parser.
var ErrParse = errors.New("config: failed to parse environment")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (value copy of T)
	loadMu     sync.Mutex
)

// Load populates cfg from the environment. A .env file in the working
// directory is read once; variables already set take precedence.
// Results are cached per type.
func Load[T any](cfg *T) error {
	typ := reflect.TypeFor[T]()
	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	dotenvOnce.Do(loadDotenv)

	var out T
	if err := env.Parse(&out); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	cache.Store(typ, out)
	*cfg = out
	return nil
}

// MustLoad is Load that panics on failure. Use it during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset drops all cached values so the next Load re-reads the environment.
func Reset() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}

func loadDotenv() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
}
