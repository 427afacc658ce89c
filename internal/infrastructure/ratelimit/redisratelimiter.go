package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Window is one sliding window budget. A zero Limit disables the window.
type Window struct {
	Limit    int
	Duration time.Duration
}

// RedisRateLimiter counts hits per key in Redis sorted sets, one per window,
// so every instance sharing Redis shares the budget.
type RedisRateLimiter struct {
	client  *redis.Client
	prefix  string
	windows []Window
	now     func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string, windows ...Window) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:  client,
		prefix:  prefix,
		windows: windows,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether every window still has
// room. A denied hit is still recorded.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	for _, w := range l.windows {
		if w.Limit <= 0 || w.Duration <= 0 {
			continue
		}
		allowed, err := l.checkWindow(ctx, key, w, now)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, w Window, now time.Time) (bool, error) {
	redisKey := l.key(key, w.Duration)
	windowStart := now.Add(-w.Duration).UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, w.Duration+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit window: %w", err)
	}

	return card.Val() < int64(w.Limit), nil
}

// Reset forgets every window for key.
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	keys := make([]string, 0, len(l.windows))
	for _, w := range l.windows {
		keys = append(keys, l.key(key, w.Duration))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) key(identifier string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", l.prefix, identifier, window.String())
}
