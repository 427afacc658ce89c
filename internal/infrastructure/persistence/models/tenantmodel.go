package models

import (
	"time"

	"gorm.io/datatypes"

	"bizhub/internal/shared/constants"
)

// TenantModel is a row of the shared tenant directory.
type TenantModel struct {
	ID             uint              `gorm:"primarykey"`
	Name           string            `gorm:"not null;size:255"`
	Subdomain      string            `gorm:"uniqueIndex:uk_tenants_subdomain;not null;size:63"`
	DatabaseName   string            `gorm:"uniqueIndex:uk_tenants_database_name;not null;size:64"`
	Status         string            `gorm:"not null;default:inactive;size:20;index:idx_tenants_status"`
	Settings       datatypes.JSONMap `gorm:"type:json"`
	LastAccessedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (TenantModel) TableName() string {
	return constants.TableTenants
}
