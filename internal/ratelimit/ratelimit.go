package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a per-second counter over Redis, one bucket per client key.
// When Redis is unavailable the limiter allows the request; the collector
// should degrade open, not drop telemetry on its own infrastructure
// hiccups.
type Limiter struct {
	redis             *redis.Client
	requestsPerSecond int
}

func NewLimiter(client *redis.Client, requestsPerSecond int) *Limiter {
	return &Limiter{
		redis:             client,
		requestsPerSecond: requestsPerSecond,
	}
}

func (l *Limiter) Allow(ctx context.Context, clientKey string) bool {
	if l.redis == nil || l.requestsPerSecond <= 0 {
		return true
	}

	key := "ratelimit:" + clientKey

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return true // Allow on error
	}

	if count == 1 {
		l.redis.Expire(ctx, key, time.Second)
	}

	return count <= int64(l.requestsPerSecond)
}
