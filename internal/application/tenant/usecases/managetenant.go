package usecases

import (
	"context"
	"fmt"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/shared/logger"
)

// DropTenantUseCase destroys a tenant's store. The directory row is kept as
// inactive so the subdomain stays reserved.
type DropTenantUseCase struct {
	directory   tenant.Directory
	provisioner StoreProvisioner
	changes     *ChangeBroadcaster
	logger      logger.Interface
}

func NewDropTenantUseCase(directory tenant.Directory, provisioner StoreProvisioner, changes *ChangeBroadcaster, logger logger.Interface) *DropTenantUseCase {
	return &DropTenantUseCase{
		directory:   directory,
		provisioner: provisioner,
		changes:     changes,
		logger:      logger,
	}
}

func (uc *DropTenantUseCase) Execute(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	t, err := uc.directory.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	// stop routing before the store disappears
	if t.Status != tenant.StatusInactive {
		if err := uc.directory.UpdateStatus(ctx, t.ID, tenant.StatusInactive); err != nil {
			return nil, fmt.Errorf("deactivate %s: %w", subdomain, err)
		}
		t.Status = tenant.StatusInactive
	}
	uc.changes.Broadcast(ctx, t, pubsub.TenantChangeDeactivated, true)

	if err := uc.provisioner.DropStore(ctx, t); err != nil {
		return nil, fmt.Errorf("drop store for %s: %w", subdomain, err)
	}
	uc.changes.Broadcast(ctx, t, pubsub.TenantChangeDropped, true)

	uc.logger.Warnw("tenant dropped", "tenant_id", t.ID, "subdomain", subdomain)
	return t, nil
}

type MigrateTenantResult struct {
	Tenant    *tenant.Tenant
	Migration *migration.Result
	Err       error
}

// MigrateTenantUseCase brings tenant stores to the newest schema version.
type MigrateTenantUseCase struct {
	directory   tenant.Directory
	provisioner StoreProvisioner
	changes     *ChangeBroadcaster
	logger      logger.Interface
}

func NewMigrateTenantUseCase(directory tenant.Directory, provisioner StoreProvisioner, changes *ChangeBroadcaster, logger logger.Interface) *MigrateTenantUseCase {
	return &MigrateTenantUseCase{
		directory:   directory,
		provisioner: provisioner,
		changes:     changes,
		logger:      logger,
	}
}

func (uc *MigrateTenantUseCase) Execute(ctx context.Context, subdomain string) (*MigrateTenantResult, error) {
	t, err := uc.directory.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	res := uc.migrate(ctx, t)
	return res, res.Err
}

// ExecuteAll migrates every active tenant. One failing tenant does not stop the
// others; per-tenant errors are in the results.
func (uc *MigrateTenantUseCase) ExecuteAll(ctx context.Context) ([]*MigrateTenantResult, error) {
	tenants, err := uc.directory.List(ctx, tenant.ListFilter{Status: tenant.StatusActive})
	if err != nil {
		return nil, err
	}

	results := make([]*MigrateTenantResult, 0, len(tenants))
	for _, t := range tenants {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, uc.migrate(ctx, t))
	}
	return results, nil
}

func (uc *MigrateTenantUseCase) migrate(ctx context.Context, t *tenant.Tenant) *MigrateTenantResult {
	result, err := uc.provisioner.Migrate(ctx, t)
	if err != nil {
		uc.logger.Errorw("tenant migration failed", "tenant_id", t.ID, "subdomain", t.Subdomain, "error", err)
		return &MigrateTenantResult{Tenant: t, Err: err}
	}
	if result.Applied > 0 {
		uc.changes.Broadcast(ctx, t, pubsub.TenantChangeMigrated, false)
	}
	return &MigrateTenantResult{Tenant: t, Migration: result}
}

// SetTenantStatusUseCase moves a tenant between active, inactive and
// suspended. Activation requires a verified store.
type SetTenantStatusUseCase struct {
	directory   tenant.Directory
	provisioner StoreProvisioner
	changes     *ChangeBroadcaster
	logger      logger.Interface
}

func NewSetTenantStatusUseCase(directory tenant.Directory, provisioner StoreProvisioner, changes *ChangeBroadcaster, logger logger.Interface) *SetTenantStatusUseCase {
	return &SetTenantStatusUseCase{
		directory:   directory,
		provisioner: provisioner,
		changes:     changes,
		logger:      logger,
	}
}

func (uc *SetTenantStatusUseCase) Execute(ctx context.Context, subdomain string, status tenant.Status) (*tenant.Tenant, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid tenant status %q", status)
	}

	t, err := uc.directory.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return t, nil
	}

	if status == tenant.StatusActive {
		if err := uc.provisioner.Verify(ctx, t); err != nil {
			return nil, fmt.Errorf("cannot activate %s: %w", subdomain, err)
		}
	}

	if err := uc.directory.UpdateStatus(ctx, t.ID, status); err != nil {
		return nil, err
	}
	previous := t.Status
	t.Status = status

	if status == tenant.StatusActive {
		uc.changes.Broadcast(ctx, t, pubsub.TenantChangeActivated, false)
	} else {
		uc.changes.Broadcast(ctx, t, pubsub.TenantChangeDeactivated, true)
	}

	uc.logger.Infow("tenant status changed", "tenant_id", t.ID, "subdomain", subdomain, "from", previous, "to", status)
	return t, nil
}

type ListTenantsUseCase struct {
	directory tenant.Directory
}

func NewListTenantsUseCase(directory tenant.Directory) *ListTenantsUseCase {
	return &ListTenantsUseCase{directory: directory}
}

func (uc *ListTenantsUseCase) Execute(ctx context.Context, status tenant.Status) ([]*tenant.Tenant, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("invalid tenant status %q", status)
	}
	return uc.directory.List(ctx, tenant.ListFilter{Status: status})
}
