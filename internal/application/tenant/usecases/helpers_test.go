package usecases

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/infrastructure/repository"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/logger"
)

type testEnv struct {
	directory   *repository.TenantRepository
	registry    *tenancy.Registry
	provisioner *tenancy.Provisioner
	changes     *ChangeBroadcaster
}

// newTestEnv builds a migrated sqlite directory and a sqlite tenant store root,
// both inside t.TempDir().
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	directoryDB, err := database.Open(ctx, database.StoreConfig{
		Name:   "directory",
		Driver: config.DriverSQLite,
		DSN:    database.SQLiteDSN(filepath.Join(dir, "directory.db")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(directoryDB) })
	_, err = migration.NewRunner(migration.SetDirectory, logger.NewNopLogger()).Up(ctx, directoryDB)
	require.NoError(t, err)

	base := config.TenantStoreConfig{
		Driver:                config.DriverSQLite,
		DataDir:               filepath.Join(dir, "tenants"),
		DatabasePrefix:        "tenant_",
		MaxOpenConns:          4,
		ConnectTimeoutSeconds: 2,
	}
	reg := tenancy.NewRegistry(base, logger.NewNopLogger())
	t.Cleanup(reg.Close)

	return &testEnv{
		directory:   repository.NewTenantRepository(directoryDB, logger.NewNopLogger()),
		registry:    reg,
		provisioner: tenancy.NewProvisioner(tenancy.NewStoreAdmin(base, nil), reg, base, logger.NewNopLogger()),
		changes:     NewChangeBroadcaster(reg, nil, nil, logger.NewNopLogger()),
	}
}

func (e *testEnv) provision(t *testing.T, subdomain string) *ProvisionTenantResult {
	t.Helper()
	uc := NewProvisionTenantUseCase(e.directory, e.provisioner, e.changes, "tenant_", logger.NewNopLogger())
	res, err := uc.Execute(context.Background(), ProvisionTenantCommand{Name: subdomain + " Inc", Subdomain: subdomain})
	require.NoError(t, err)
	return res
}
