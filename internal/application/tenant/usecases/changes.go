package usecases

import (
	"context"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/shared/logger"
)

type HandlePurger interface {
	Purge(tenantID uint)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, subdomain string) error
}

// ChangeBroadcaster drops every cached view of a tenant after an
// administrative change: the local handle, the shared directory cache, and the
// handles held by other server instances through the change channel. All
// steps are best effort.
type ChangeBroadcaster struct {
	handles HandlePurger
	cache   CacheInvalidator
	events  pubsub.TenantEventPublisher
	logger  logger.Interface
}

// NewChangeBroadcaster accepts nil cache and events for deployments without
// Redis.
func NewChangeBroadcaster(handles HandlePurger, cache CacheInvalidator, events pubsub.TenantEventPublisher, logger logger.Interface) *ChangeBroadcaster {
	return &ChangeBroadcaster{
		handles: handles,
		cache:   cache,
		events:  events,
		logger:  logger,
	}
}

func (b *ChangeBroadcaster) Broadcast(ctx context.Context, t *tenant.Tenant, change pubsub.TenantChangeType, purge bool) {
	if b == nil {
		return
	}
	if purge && b.handles != nil {
		b.handles.Purge(t.ID)
	}
	if b.cache != nil {
		if err := b.cache.Invalidate(ctx, t.Subdomain); err != nil {
			b.logger.Warnw("failed to invalidate tenant cache", "tenant", t.Subdomain, "error", err)
		}
	}
	if b.events != nil {
		if err := b.events.PublishTenantChange(ctx, t.ID, t.Subdomain, change); err != nil {
			b.logger.Warnw("failed to publish tenant change", "tenant", t.Subdomain, "change", change, "error", err)
		}
	}
}
