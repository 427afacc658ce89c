package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/persistence/mappers"
	"bizhub/internal/infrastructure/persistence/models"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

// TenantRepository is the tenant directory on the shared directory store.
type TenantRepository struct {
	db     *gorm.DB
	mapper mappers.TenantMapper
	logger logger.Interface
}

func NewTenantRepository(db *gorm.DB, log logger.Interface) *TenantRepository {
	return &TenantRepository{
		db:     db,
		mapper: mappers.NewTenantMapper(),
		logger: log,
	}
}

func (r *TenantRepository) FindActiveBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := r.db.WithContext(ctx).
		Where("subdomain = ? AND status = ?", subdomain, string(tenant.StatusActive)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find tenant by subdomain: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uint) (*tenant.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("tenant not found")
		}
		return nil, fmt.Errorf("failed to get tenant by ID: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("tenant not found", subdomain)
		}
		return nil, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *TenantRepository) List(ctx context.Context, filter tenant.ListFilter) ([]*tenant.Tenant, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var list []*models.TenantModel
	if err := query.Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return r.mapper.ToDomainList(list), nil
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	model := r.mapper.ToModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("tenant subdomain or database name already exists", t.Subdomain)
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt

	r.logger.Infow("tenant created in directory",
		"tenant_id", t.ID,
		"subdomain", t.Subdomain,
		"database_name", t.DatabaseName)
	return nil
}

func (r *TenantRepository) UpdateStatus(ctx context.Context, id uint, status tenant.Status) error {
	result := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update tenant status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("tenant not found")
	}
	return nil
}

// TouchLastAccessed skips UpdatedAt so access bookkeeping does not look like an
// administrative change.
func (r *TenantRepository) TouchLastAccessed(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("id = ?", id).
		UpdateColumn("last_accessed_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to touch tenant last access: %w", err)
	}
	return nil
}
