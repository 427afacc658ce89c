package usecases

import (
	"context"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/logger"
)

type tenantLister interface {
	List(ctx context.Context, filter tenant.ListFilter) ([]*tenant.Tenant, error)
}

type handleSource interface {
	Get(ctx context.Context, t *tenant.Tenant) (*tenancy.Handle, error)
}

// CleanupAllTenantsUseCase logs out idle sessions in every active tenant. Each
// tenant is processed under its own tenant context so no store is shared.
type CleanupAllTenantsUseCase struct {
	directory      tenantLister
	handles        handleSource
	manager        *SessionManager
	timeoutMinutes int
	logger         logger.Interface
}

func NewCleanupAllTenantsUseCase(
	directory tenantLister,
	handles handleSource,
	manager *SessionManager,
	timeoutMinutes int,
	logger logger.Interface,
) *CleanupAllTenantsUseCase {
	if timeoutMinutes <= 0 {
		timeoutMinutes = DefaultTimeoutMinutes
	}
	return &CleanupAllTenantsUseCase{
		directory:      directory,
		handles:        handles,
		manager:        manager,
		timeoutMinutes: timeoutMinutes,
		logger:         logger,
	}
}

// Execute returns the number of sessions logged out. A failing tenant is
// logged and skipped.
func (uc *CleanupAllTenantsUseCase) Execute(ctx context.Context) (int, error) {
	tenants, err := uc.directory.List(ctx, tenant.ListFilter{Status: tenant.StatusActive})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, t := range tenants {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		h, err := uc.handles.Get(ctx, t)
		if err != nil {
			uc.logger.Warnw("skipping tenant in session cleanup", "tenant", t.Subdomain, "error", err)
			continue
		}

		tctx := tenancy.NewContext(ctx, &tenancy.Context{Tenant: t, Handle: h})
		n, err := uc.manager.CleanupExpiredSessions(tctx, uc.timeoutMinutes)
		h.Release()
		if err != nil {
			uc.logger.Warnw("session cleanup failed", "tenant", t.Subdomain, "error", err)
			continue
		}
		if n > 0 {
			uc.logger.Infow("expired sessions logged out", "tenant", t.Subdomain, "count", n)
		}
		total += int(n)
	}
	return total, nil
}
