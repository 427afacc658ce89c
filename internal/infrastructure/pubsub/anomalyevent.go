package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/logger"
)

// AnomalyEvent is published once per login that produced findings.
type AnomalyEvent struct {
	TenantID  uint              `json:"tenant_id"`
	Subdomain string            `json:"subdomain"`
	UserID    uint              `json:"user_id"`
	SessionID string            `json:"session_id"`
	IPAddress string            `json:"ip_address"`
	Findings  []session.Finding `json:"findings"`
	Timestamp int64             `json:"timestamp"`
}

// AnomalyChannel is the per-tenant channel that carries login anomaly events.
func AnomalyChannel(subdomain string) string {
	return "bizhub:anomaly:" + subdomain
}

// RedisAnomalyEventBus publishes login anomaly findings for out-of-process
// consumers such as a security dashboard.
type RedisAnomalyEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisAnomalyEventBus(client *redis.Client, logger logger.Interface) *RedisAnomalyEventBus {
	return &RedisAnomalyEventBus{
		client: client,
		logger: logger,
	}
}

func (b *RedisAnomalyEventBus) Publish(ctx context.Context, event AnomalyEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal anomaly event: %w", err)
	}

	channel := AnomalyChannel(event.Subdomain)
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish anomaly event",
			"channel", channel,
			"user_id", event.UserID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("anomaly event published",
		"channel", channel,
		"user_id", event.UserID,
		"findings", len(event.Findings),
	)
	return nil
}
