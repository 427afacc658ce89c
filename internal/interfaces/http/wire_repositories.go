package http

import (
	"gorm.io/gorm"

	"bizhub/internal/infrastructure/repository"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/logger"
)

// repositories holds the directory repository and the per-request provider of
// tenant-scoped repositories.
type repositories struct {
	tenantDirectory *repository.TenantRepository
	tenantStores    *tenancy.Repositories
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		tenantDirectory: repository.NewTenantRepository(db, log),
		tenantStores:    tenancy.NewRepositories(),
	}
}
