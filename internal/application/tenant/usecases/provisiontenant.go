package usecases

import (
	"context"
	"fmt"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

// StoreProvisioner performs the administrative operations on one tenant store.
type StoreProvisioner interface {
	CreateStore(ctx context.Context, t *tenant.Tenant) error
	DropStore(ctx context.Context, t *tenant.Tenant) error
	Migrate(ctx context.Context, t *tenant.Tenant) (*migration.Result, error)
	Verify(ctx context.Context, t *tenant.Tenant) error
}

type ProvisionTenantCommand struct {
	Name         string `json:"name" validate:"required,max=100"`
	Subdomain    string `json:"subdomain" validate:"required,subdomain"`
	DatabaseName string `json:"database_name" validate:"dbname"`
}

type ProvisionTenantResult struct {
	Tenant    *tenant.Tenant
	Migration *migration.Result
	Resumed   bool
}

// ProvisionTenantUseCase onboards a tenant. The directory row is written as
// inactive first and flipped to active only after the store is verified, so a
// failed run leaves an inactive row that a rerun picks up.
type ProvisionTenantUseCase struct {
	directory   tenant.Directory
	provisioner StoreProvisioner
	changes     *ChangeBroadcaster
	dbPrefix    string
	logger      logger.Interface
}

func NewProvisionTenantUseCase(
	directory tenant.Directory,
	provisioner StoreProvisioner,
	changes *ChangeBroadcaster,
	dbPrefix string,
	logger logger.Interface,
) *ProvisionTenantUseCase {
	return &ProvisionTenantUseCase{
		directory:   directory,
		provisioner: provisioner,
		changes:     changes,
		dbPrefix:    dbPrefix,
		logger:      logger,
	}
}

func (uc *ProvisionTenantUseCase) Execute(ctx context.Context, cmd ProvisionTenantCommand) (*ProvisionTenantResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	t, resumed, err := uc.directoryRow(ctx, cmd)
	if err != nil {
		return nil, err
	}
	log := uc.logger.With("tenant_id", t.ID, "subdomain", t.Subdomain)

	if err := uc.provisioner.CreateStore(ctx, t); err != nil {
		log.Errorw("provisioning failed", "step", "create_store", "error", err)
		return nil, fmt.Errorf("create store for %s: %w", t.Subdomain, err)
	}

	result, err := uc.provisioner.Migrate(ctx, t)
	if err != nil {
		log.Errorw("provisioning failed", "step", "migrate", "error", err)
		return nil, fmt.Errorf("migrate store for %s: %w", t.Subdomain, err)
	}

	if err := uc.provisioner.Verify(ctx, t); err != nil {
		log.Errorw("provisioning failed", "step", "verify", "error", err)
		return nil, fmt.Errorf("verify store for %s: %w", t.Subdomain, err)
	}

	if err := uc.directory.UpdateStatus(ctx, t.ID, tenant.StatusActive); err != nil {
		return nil, fmt.Errorf("activate %s: %w", t.Subdomain, err)
	}
	t.Status = tenant.StatusActive
	uc.changes.Broadcast(ctx, t, pubsub.TenantChangeActivated, false)

	log.Infow("tenant provisioned", "migration_version", result.ToVersion, "resumed", resumed)
	return &ProvisionTenantResult{Tenant: t, Migration: result, Resumed: resumed}, nil
}

// directoryRow returns the row to provision. An inactive row for the same
// subdomain and database is resumed; anything else that exists is a conflict.
func (uc *ProvisionTenantUseCase) directoryRow(ctx context.Context, cmd ProvisionTenantCommand) (*tenant.Tenant, bool, error) {
	dbName := cmd.DatabaseName
	if dbName == "" {
		dbName = tenant.DefaultDatabaseName(uc.dbPrefix, cmd.Subdomain)
	}

	existing, err := uc.directory.GetBySubdomain(ctx, cmd.Subdomain)
	switch {
	case err == nil:
		if existing.Status != tenant.StatusInactive || existing.DatabaseName != dbName {
			return nil, false, errors.NewConflictError("tenant already exists", cmd.Subdomain)
		}
		return existing, true, nil
	case !errors.IsNotFoundError(err):
		return nil, false, err
	}

	t, err := tenant.NewTenant(cmd.Name, cmd.Subdomain, dbName)
	if err != nil {
		return nil, false, errors.NewValidationError("Validation failed", err.Error())
	}
	if err := uc.directory.Create(ctx, t); err != nil {
		return nil, false, err
	}
	return t, false, nil
}
