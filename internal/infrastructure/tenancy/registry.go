package tenancy

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/database"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

// Opener opens a store. database.Open in production.
type Opener func(ctx context.Context, cfg database.StoreConfig) (*gorm.DB, error)

// Registry caches one Handle per tenant id. Concurrent Get calls for a tenant
// that is not cached yet share a single open.
type Registry struct {
	base   config.TenantStoreConfig
	open   Opener
	logger logger.Interface
	clock  biztime.Clock

	mu      sync.RWMutex
	handles map[uint]*Handle
	group   singleflight.Group
}

type RegistryOption func(*Registry)

func WithOpener(open Opener) RegistryOption {
	return func(r *Registry) { r.open = open }
}

func WithClock(clock biztime.Clock) RegistryOption {
	return func(r *Registry) { r.clock = clock }
}

func NewRegistry(base config.TenantStoreConfig, log logger.Interface, opts ...RegistryOption) *Registry {
	r := &Registry{
		base:    base,
		open:    database.Open,
		logger:  log.With("component", "tenancy.registry"),
		clock:   biztime.NowUTC,
		handles: make(map[uint]*Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the store configuration the registry would use for t.
func (r *Registry) Config(t *tenant.Tenant) database.StoreConfig {
	return StoreConfigFor(r.base, t)
}

// Get returns the handle of t, opening it on first use, and holds a reference
// on it that the caller must Release. A cached handle whose store configuration
// no longer matches the tenant record is replaced.
func (r *Registry) Get(ctx context.Context, t *tenant.Tenant) (*Handle, error) {
	want := r.Config(t)

	for {
		if h := r.cached(t.ID, want); h != nil {
			return h, nil
		}

		h, err := r.openShared(ctx, t, want)
		if err != nil {
			return nil, err
		}
		if h.acquire(r.clock()) {
			return h, nil
		}
		// dropped between open and acquire, look again
	}
}

func (r *Registry) openShared(ctx context.Context, t *tenant.Tenant, want database.StoreConfig) (*Handle, error) {
	v, err, _ := r.group.Do(strconv.FormatUint(uint64(t.ID), 10), func() (interface{}, error) {
		r.mu.RLock()
		h, ok := r.handles[t.ID]
		r.mu.RUnlock()
		if ok && h.config == want {
			return h, nil
		}

		// the open outlives a cancelled caller so that waiters sharing it still
		// get a result; it is bounded by the connect timeout instead
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.base.ConnectTimeout())
		defer cancel()

		store, err := r.open(openCtx, want)
		if err != nil {
			r.logger.Errorw("failed to open tenant store",
				"tenant_id", t.ID,
				"store", want.String(),
				"error", err)
			return nil, errors.NewConnectionUnavailableError().WithCause(err)
		}

		h = newHandle(t.ID, want, store, r.clock(), r.closeHandle)

		r.mu.Lock()
		stale := r.handles[t.ID]
		r.handles[t.ID] = h
		r.mu.Unlock()

		if stale != nil && stale.retire(false) {
			r.closeHandle(stale)
		}

		r.logger.Infow("tenant store handle opened",
			"tenant_id", t.ID,
			"store", want.String())
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// cached takes the reference under the registry lock, so Purge and Sweep never
// see a handle between lookup and acquire.
func (r *Registry) cached(tenantID uint, want database.StoreConfig) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[tenantID]
	if !ok || h.config != want || !h.acquire(r.clock()) {
		return nil
	}
	return h
}

// Purge forgets the handle of a tenant. The next Get reopens it; the old pool
// closes once its last reference is released.
func (r *Registry) Purge(tenantID uint) {
	r.mu.Lock()
	h, ok := r.handles[tenantID]
	delete(r.handles, tenantID)
	r.mu.Unlock()

	if !ok {
		return
	}
	if h.retire(false) {
		r.closeHandle(h)
	}
	r.logger.Infow("tenant store handle purged", "tenant_id", tenantID)
}

// Sweep drops handles that are unreferenced and unused for longer than idle,
// and returns how many were dropped. A zero idle disables sweeping.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.clock().Add(-idle)

	var expired []*Handle
	r.mu.Lock()
	for id, h := range r.handles {
		if !h.inUse() && h.idleSince().Before(cutoff) {
			expired = append(expired, h)
			delete(r.handles, id)
		}
	}
	r.mu.Unlock()

	for _, h := range expired {
		if h.retire(false) {
			r.closeHandle(h)
		}
	}
	if len(expired) > 0 {
		r.logger.Infow("idle tenant store handles closed", "count", len(expired))
	}
	return len(expired)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Close closes every handle, referenced or not. It runs at shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[uint]*Handle)
	r.mu.Unlock()

	for _, h := range handles {
		if h.retire(true) {
			r.closeHandle(h)
		}
	}
}

func (r *Registry) closeHandle(h *Handle) {
	if err := database.CloseDB(h.db); err != nil {
		r.logger.Warnw("failed to close tenant store handle",
			"tenant_id", h.tenantID,
			"error", err)
	}
}
