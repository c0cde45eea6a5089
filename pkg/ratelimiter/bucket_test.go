package ratelimiter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/pkg/ratelimiter"
)

// clock is a manually stepped time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Unix(1_700_000_000, 0)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var cfg = ratelimiter.Config{Capacity: 5, RefillRate: 2, RefillInterval: time.Second}

func newBucket(t *testing.T, c *clock) *ratelimiter.Bucket {
	t.Helper()
	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithClock(c.Now)), cfg)
	require.NoError(t, err)
	return b
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, cfg.Validate())
	for _, bad := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		assert.ErrorIs(t, bad.Validate(), ratelimiter.ErrInvalidConfig)
	}

	_, err := ratelimiter.NewBucket(nil, cfg)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucketAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	b := newBucket(t, c)

	for i := range 5 {
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 4-i, res.Remaining)
		assert.Equal(t, 5, res.Limit)
		assert.Zero(t, res.RetryAfter())
	}

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, -1, res.Remaining)
	assert.Equal(t, c.Now().Add(time.Second), res.RetryAt)

	// denied requests take nothing
	st, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Remaining)

	// other keys are independent
	res, err = b.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucketRefill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	b := newBucket(t, c)

	_, err := b.AllowN(ctx, "k", 5)
	require.NoError(t, err)

	c.Advance(1500 * time.Millisecond)
	st, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Remaining)

	// the half interval is kept
	c.Advance(500 * time.Millisecond)
	st, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 4, st.Remaining)

	c.Advance(time.Hour)
	st, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 5, st.Remaining)
}

func TestBucketRetryAtForLargeDeficit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	b := newBucket(t, c)

	_, err := b.AllowN(ctx, "k", 5)
	require.NoError(t, err)

	// 5 tokens at 2 per second needs three refills
	res, err := b.AllowN(ctx, "k", 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, c.Now().Add(3*time.Second), res.RetryAt)
}

func TestBucketInvalidCount(t *testing.T) {
	t.Parallel()
	b := newBucket(t, newClock())

	_, err := b.AllowN(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	_, err = b.AllowN(context.Background(), "k", 6)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestBucketResetAndCancel(t *testing.T) {
	t.Parallel()
	b := newBucket(t, newClock())

	_, err := b.AllowN(context.Background(), "k", 5)
	require.NoError(t, err)
	require.NoError(t, b.Reset(context.Background(), "k"))
	st, err := b.Status(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 5, st.Remaining)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Allow(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBucketConcurrent(t *testing.T) {
	t.Parallel()

	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity: 100, RefillRate: 1, RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				res, err := b.Allow(context.Background(), "shared")
				if err == nil && res.Allowed() {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), allowed.Load())
}

func TestMemoryStoreSweep(t *testing.T) {
	t.Parallel()
	c := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(c.Now), ratelimiter.WithStaleAfter(time.Minute))

	_, _, err := store.ConsumeTokens(context.Background(), "old", 1, cfg)
	require.NoError(t, err)
	c.Advance(2 * time.Minute)
	_, _, err = store.ConsumeTokens(context.Background(), "new", 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreRun(t *testing.T) {
	t.Parallel()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
