package web

import (
	"context"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"
)

const redisRateTimeout = 250 * time.Millisecond

// redisRateLimiter keeps counters in Redis so limits hold across
// replicas. It fails open: when Redis misbehaves the request goes
// through and the error is logged.
type redisRateLimiter struct {
	client *redis.Client
	logger *slog.Logger
	prefix string
}

func NewRedisRateLimiter(addr, password string, db int, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &redisRateLimiter{
		client: client,
		logger: logger,
		prefix: "hfthemes:ratelimit:",
	}, nil
}

func (rl *redisRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = rateWindowDefault
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisRateTimeout)
	defer cancel()

	name := rl.prefix + key
	var (
		hits *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := rl.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		hits = pipe.Incr(ctx, name)
		pipe.ExpireNX(ctx, name, window)
		ttl = pipe.TTL(ctx, name)
		return nil
	})
	if err != nil {
		rl.logger.Error("redis rate limiter error", "error", err)
		return rateDecision{allowed: true}
	}

	count := int(hits.Val())
	reset := ttl.Val()
	if reset <= 0 {
		reset = window
	}
	return rateDecision{
		allowed:   count <= limit,
		count:     count,
		windowEnd: time.Now().Add(reset),
	}
}

func (rl *redisRateLimiter) Close() {
	_ = rl.client.Close()
}
