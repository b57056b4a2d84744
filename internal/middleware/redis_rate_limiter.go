package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidhub/backend/internal/logging"
)

// RedisRateLimiter is a fixed-window counter shared by every replica pointing at
// the same redis. It fails open when redis is unreachable.
type RedisRateLimiter struct {
	client   *redis.Client
	requests int64
	window   time.Duration
	prefix   string
}

// NewRedisRateLimiter connects to redisURL and allows `requests` events per `window` per key.
func NewRedisRateLimiter(redisURL string, requests int, window time.Duration) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client:   redis.NewClient(opts),
		requests: int64(requests),
		window:   window,
		prefix:   "vidhub:ratelimit:",
	}, nil
}

// Ping verifies connectivity.
func (l *RedisRateLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	redisKey := l.prefix + key

	// SET NX EX opens the window with its TTL and INCR keeps it, both in one MULTI.
	var count *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		count = pipe.Incr(ctx, redisKey)
		return nil
	}); err != nil {
		logging.FromContext(ctx).Warn("rate limiter unavailable, allowing request", "error", err)
		return true
	}
	return count.Val() <= l.requests
}

// Close releases the redis connection pool.
func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}
