package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts sign-in attempts per key in fixed Redis windows.
type LoginLimiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: rdb, max: maxAttempts, window: window}
}

func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + "login:" + key

	count, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("login limiter incr: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("login limiter expire: %w", err)
		}
	}

	return count <= int64(l.max), nil
}
