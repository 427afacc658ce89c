package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/logger"
)

func openMigratedStore(t *testing.T, set migration.Set) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	store, err := database.Open(ctx, database.StoreConfig{
		Name:         string(set),
		Driver:       config.DriverSQLite,
		DatabaseName: string(set),
		DSN:          database.SQLiteDSN(filepath.Join(t.TempDir(), string(set)+".db")),
		MaxOpenConns: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(store) })

	_, err = migration.NewRunner(set, logger.NewNopLogger()).Up(ctx, store)
	require.NoError(t, err)
	return store
}
