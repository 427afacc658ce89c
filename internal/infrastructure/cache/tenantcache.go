package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/shared/logger"
)

const tenantKeyPrefix = "tenant:subdomain:"

// cachedTenant is the Redis representation of an active tenant.
type cachedTenant struct {
	ID           uint                   `json:"id"`
	Name         string                 `json:"name"`
	Subdomain    string                 `json:"subdomain"`
	DatabaseName string                 `json:"database_name"`
	Settings     map[string]interface{} `json:"settings,omitempty"`
}

// ActiveTenantFinder is the read path tenant resolution depends on.
type ActiveTenantFinder interface {
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error)
}

// TenantCache is a read-through cache of active tenants in front of the
// directory. Only hits are cached. Redis failures fall back to the directory.
type TenantCache struct {
	client    *redis.Client
	directory ActiveTenantFinder
	ttl       time.Duration
	logger    logger.Interface
}

func NewTenantCache(client *redis.Client, directory ActiveTenantFinder, ttl time.Duration, log logger.Interface) *TenantCache {
	return &TenantCache{
		client:    client,
		directory: directory,
		ttl:       ttl,
		logger:    log,
	}
}

func (c *TenantCache) FindActiveBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.directory.FindActiveBySubdomain(ctx, subdomain)
	}

	key := tenantKeyPrefix + subdomain
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ct cachedTenant
		if jsonErr := json.Unmarshal(data, &ct); jsonErr == nil {
			return ct.toDomain(), nil
		}
		c.logger.Warnw("dropping malformed tenant cache entry", "key", key)
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("tenant cache read failed, using directory",
			"subdomain", subdomain,
			"error", err)
	}

	t, err := c.directory.FindActiveBySubdomain(ctx, subdomain)
	if err != nil || t == nil {
		return t, err
	}

	if data, err := json.Marshal(fromDomain(t)); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warnw("tenant cache write failed",
				"subdomain", subdomain,
				"error", err)
		}
	}
	return t, nil
}

// Invalidate drops the cached entry of a subdomain.
func (c *TenantCache) Invalidate(ctx context.Context, subdomain string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, tenantKeyPrefix+subdomain).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tenant cache: %w", err)
	}
	return nil
}

func fromDomain(t *tenant.Tenant) cachedTenant {
	return cachedTenant{
		ID:           t.ID,
		Name:         t.Name,
		Subdomain:    t.Subdomain,
		DatabaseName: t.DatabaseName,
		Settings:     t.Settings,
	}
}

func (ct cachedTenant) toDomain() *tenant.Tenant {
	settings := ct.Settings
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return &tenant.Tenant{
		ID:           ct.ID,
		Name:         ct.Name,
		Subdomain:    ct.Subdomain,
		DatabaseName: ct.DatabaseName,
		Status:       tenant.StatusActive,
		Settings:     settings,
	}
}
