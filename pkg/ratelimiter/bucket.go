package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config describes a token bucket: it holds at most Capacity tokens and
// gains RefillRate tokens every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"100"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"10"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
}

// Validate reports whether every field is positive.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Store holds bucket state.
//
// ConsumeTokens refills the bucket for key, then takes tokens if enough are
// available. It returns the balance after the attempt: a negative value is
// the shortfall, and in that case nothing was taken. resetAt is the time of
// the next refill.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// RateLimiter decides whether a keyed request may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
	Status(ctx context.Context, key string) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAt is when enough tokens will exist for the denied request.
	// It is zero for allowed requests.
	RetryAt time.Time
}

func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long a denied caller should wait.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() || r.RetryAt.IsZero() {
		return 0
	}
	return max(time.Until(r.RetryAt), 0)
}

// Bucket is a RateLimiter backed by a Store.
type Bucket struct {
	store Store
	cfg   Config
}

var _ RateLimiter = (*Bucket)(nil)

func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN takes n tokens at once. Requests larger than the capacity can
// never succeed and are rejected with ErrInvalidTokenCount.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 || n > b.cfg.Capacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}
	return b.consume(ctx, key, n)
}

// Status reports the current balance without taking tokens.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.consume(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

func (b *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	res := &Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}
	if remaining < 0 {
		// one refill arrives at resetAt, each further one an interval later
		refills := (-remaining + b.cfg.RefillRate - 1) / b.cfg.RefillRate
		res.RetryAt = resetAt.Add(time.Duration(refills-1) * b.cfg.RefillInterval)
	}
	return res, nil
}

// refill advances a bucket to now. Whole intervals only, so partial progress
// toward the next token is kept.
func refill(tokens int, last time.Time, now time.Time, cfg Config) (int, time.Time) {
	if tokens >= cfg.Capacity {
		return cfg.Capacity, now
	}
	elapsed := now.Sub(last)
	if elapsed < cfg.RefillInterval {
		return tokens, last
	}
	intervals := int64(elapsed / cfg.RefillInterval)
	// enough intervals to fill the bucket from empty; avoids overflow
	limit := int64(cfg.Capacity/cfg.RefillRate + 1)
	if intervals > limit {
		return cfg.Capacity, now
	}
	tokens = min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
	return tokens, last.Add(time.Duration(intervals) * cfg.RefillInterval)
}
