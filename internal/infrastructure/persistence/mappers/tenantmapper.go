package mappers

import (
	"gorm.io/datatypes"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/persistence/models"
)

// TenantMapper handles the conversion between tenant entities and directory rows.
type TenantMapper interface {
	ToModel(entity *tenant.Tenant) *models.TenantModel
	ToDomain(model *models.TenantModel) *tenant.Tenant
	ToDomainList(models []*models.TenantModel) []*tenant.Tenant
}

type TenantMapperImpl struct{}

func NewTenantMapper() TenantMapper {
	return &TenantMapperImpl{}
}

func (m *TenantMapperImpl) ToModel(entity *tenant.Tenant) *models.TenantModel {
	if entity == nil {
		return nil
	}
	settings := datatypes.JSONMap{}
	for k, v := range entity.Settings {
		settings[k] = v
	}
	return &models.TenantModel{
		ID:             entity.ID,
		Name:           entity.Name,
		Subdomain:      entity.Subdomain,
		DatabaseName:   entity.DatabaseName,
		Status:         string(entity.Status),
		Settings:       settings,
		LastAccessedAt: entity.LastAccessedAt,
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
}

func (m *TenantMapperImpl) ToDomain(model *models.TenantModel) *tenant.Tenant {
	if model == nil {
		return nil
	}
	settings := make(map[string]interface{}, len(model.Settings))
	for k, v := range model.Settings {
		settings[k] = v
	}
	return &tenant.Tenant{
		ID:             model.ID,
		Name:           model.Name,
		Subdomain:      model.Subdomain,
		DatabaseName:   model.DatabaseName,
		Status:         tenant.Status(model.Status),
		Settings:       settings,
		LastAccessedAt: model.LastAccessedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func (m *TenantMapperImpl) ToDomainList(list []*models.TenantModel) []*tenant.Tenant {
	out := make([]*tenant.Tenant, 0, len(list))
	for _, model := range list {
		out = append(out, m.ToDomain(model))
	}
	return out
}
