// Package ratelimiter implements token bucket rate limiting over a pluggable
// Store.
//
// A bucket holds up to Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each request takes one or more tokens; a request that
// cannot be covered is denied and takes nothing.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed() {
//		// reject, retry after res.RetryAfter()
//	}
//
// MemoryStore is local to the process. Run it in the background to drop
// buckets that have gone unused. RedisStore shares buckets between
// instances; refill and consumption run in one Lua script, so concurrent
// requests never race.
package ratelimiter
