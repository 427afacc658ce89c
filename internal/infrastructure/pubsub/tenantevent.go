package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizhub/internal/shared/logger"
)

// TenantChangeType represents what happened to a tenant
type TenantChangeType string

const (
	TenantChangeActivated   TenantChangeType = "activated"
	TenantChangeDeactivated TenantChangeType = "deactivated"
	TenantChangeDropped     TenantChangeType = "dropped"
	TenantChangeMigrated    TenantChangeType = "migrated"
)

// TenantChangeEvent tells every server instance that its cached view of a
// tenant is stale.
type TenantChangeEvent struct {
	TenantID   uint             `json:"tenant_id"`
	Subdomain  string           `json:"subdomain"`
	ChangeType TenantChangeType `json:"change_type"`
	Timestamp  int64            `json:"timestamp"`
}

// TenantEventHandler is a callback function for handling tenant events
type TenantEventHandler func(ctx context.Context, event TenantChangeEvent)

// TenantEventPublisher is implemented by RedisTenantEventBus.
type TenantEventPublisher interface {
	PublishTenantChange(ctx context.Context, tenantID uint, subdomain string, change TenantChangeType) error
}

const tenantChangeChannel = "bizhub:tenant:change"

// RedisTenantEventBus distributes tenant changes made by administrative
// commands to every running server instance.
type RedisTenantEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisTenantEventBus(client *redis.Client, logger logger.Interface) *RedisTenantEventBus {
	return &RedisTenantEventBus{
		client: client,
		logger: logger,
	}
}

func (b *RedisTenantEventBus) PublishTenantChange(ctx context.Context, tenantID uint, subdomain string, change TenantChangeType) error {
	data, err := json.Marshal(TenantChangeEvent{
		TenantID:   tenantID,
		Subdomain:  subdomain,
		ChangeType: change,
		Timestamp:  time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, tenantChangeChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish tenant change event",
			"tenant_id", tenantID,
			"change_type", change,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe blocks until ctx is done, calling handler for every tenant change.
func (b *RedisTenantEventBus) Subscribe(ctx context.Context, handler TenantEventHandler) error {
	pubsub := b.client.Subscribe(ctx, tenantChangeChannel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to tenant change events",
		"channel", tenantChangeChannel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("tenant event subscriber stopped",
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("tenant event channel closed")
				return nil
			}

			var event TenantChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal tenant event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}

			handler(ctx, event)
		}
	}
}
