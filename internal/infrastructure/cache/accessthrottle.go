package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessThrottle limits last_accessed_at writes to one per tenant per interval
// across all instances.
type AccessThrottle struct {
	client   *redis.Client
	interval time.Duration
}

func NewAccessThrottle(client *redis.Client, interval time.Duration) *AccessThrottle {
	return &AccessThrottle{client: client, interval: interval}
}

// ShouldTouch reports whether the caller won this interval's write for the
// tenant. Without Redis every call wins.
func (a *AccessThrottle) ShouldTouch(ctx context.Context, tenantID uint) bool {
	if a.client == nil || a.interval <= 0 {
		return true
	}
	won, err := a.client.SetNX(ctx, fmt.Sprintf("tenant:touch:%d", tenantID), 1, a.interval).Result()
	if err != nil {
		return true
	}
	return won
}
