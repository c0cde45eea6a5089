// Package redis connects to Redis with retries and exposes a health check.
//
// The client it returns backs session.RedisStore and ratelimiter.RedisStore:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	sessions := session.NewRedisStore[Data](client)
//	ready := health.Readiness[*router.Context](log, health.Check{Name: "redis", Fn: redis.Healthcheck(client)})
//
// ConnectionURL accepts redis:// and rediss:// (TLS) URLs. Errors wrap the
// package sentinels, so callers can use errors.Is.
package redis
