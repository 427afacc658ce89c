package usecases

import (
	"context"
	"time"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/goroutine"
	"bizhub/internal/shared/logger"
)

type ActiveTenantFinder interface {
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error)
}

type HandleSource interface {
	Get(ctx context.Context, t *tenant.Tenant) (*tenancy.Handle, error)
}

type AccessToucher interface {
	TouchLastAccessed(ctx context.Context, id uint, at time.Time) error
}

// TouchThrottle limits how often last_accessed_at is written for one tenant.
type TouchThrottle interface {
	ShouldTouch(ctx context.Context, tenantID uint) bool
}

const touchTimeout = 5 * time.Second

// ResolveTenantUseCase turns a routing key into the request's tenant binding.
type ResolveTenantUseCase struct {
	finder   ActiveTenantFinder
	handles  HandleSource
	toucher  AccessToucher
	throttle TouchThrottle
	clock    biztime.Clock
	logger   logger.Interface
}

func NewResolveTenantUseCase(
	finder ActiveTenantFinder,
	handles HandleSource,
	toucher AccessToucher,
	throttle TouchThrottle,
	clock biztime.Clock,
	logger logger.Interface,
) *ResolveTenantUseCase {
	return &ResolveTenantUseCase{
		finder:   finder,
		handles:  handles,
		toucher:  toucher,
		throttle: throttle,
		clock:    clock,
		logger:   logger,
	}
}

// Execute fails with TENANT_NOT_FOUND when key names no active tenant and with
// CONNECTION_UNAVAILABLE when the directory or the tenant store is unreachable.
func (uc *ResolveTenantUseCase) Execute(ctx context.Context, key string) (*tenancy.Context, error) {
	if key == "" {
		return nil, errors.NewTenantNotFoundError()
	}

	t, err := uc.finder.FindActiveBySubdomain(ctx, key)
	if err != nil {
		uc.logger.Errorw("tenant directory lookup failed", "tenant_key", key, "error", err)
		return nil, errors.NewConnectionUnavailableError().WithCause(err)
	}
	if t == nil || !t.IsActive() {
		return nil, errors.NewTenantNotFoundError()
	}

	h, err := uc.handles.Get(ctx, t)
	if err != nil {
		return nil, err
	}

	uc.touch(t.ID)
	return &tenancy.Context{Tenant: t, Handle: h}, nil
}

// touch records the access in the background; it never fails the request.
func (uc *ResolveTenantUseCase) touch(tenantID uint) {
	if uc.toucher == nil {
		return
	}
	at := uc.clock()
	goroutine.FireAndForget(uc.logger, "tenant-touch", touchTimeout, func(ctx context.Context) error {
		if uc.throttle != nil && !uc.throttle.ShouldTouch(ctx, tenantID) {
			return nil
		}
		return uc.toucher.TouchLastAccessed(ctx, tenantID, at)
	})
}
