package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func newSQLiteProvisioner(t *testing.T) (*Provisioner, *Registry) {
	t.Helper()
	base := sqliteBase(t)
	reg := NewRegistry(base, logger.NewNopLogger())
	t.Cleanup(reg.Close)
	return NewProvisioner(NewStoreAdmin(base, nil), reg, base, logger.NewNopLogger()), reg
}

func TestProvisioner_CreateMigrateVerify(t *testing.T) {
	ctx := context.Background()
	p, _ := newSQLiteProvisioner(t)
	acme := activeTenant(1, "acme")

	require.Error(t, p.Verify(ctx, acme), "store does not exist yet")

	require.NoError(t, p.CreateStore(ctx, acme))
	require.NoError(t, p.CreateStore(ctx, acme), "existing store is not an error")

	require.Error(t, p.Verify(ctx, acme), "store is not migrated yet")

	result, err := p.Migrate(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ToVersion)

	again, err := p.Migrate(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Applied)

	require.NoError(t, p.Verify(ctx, acme))
}

func TestProvisioner_StoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	p, reg := newSQLiteProvisioner(t)
	acme, beta := activeTenant(1, "acme"), activeTenant(2, "beta")

	require.NoError(t, p.CreateStore(ctx, acme))
	_, err := p.Migrate(ctx, acme)
	require.NoError(t, err)
	require.NoError(t, p.CreateStore(ctx, beta))

	hb, err := reg.Get(ctx, beta)
	require.NoError(t, err)
	assert.False(t, hb.DB().Migrator().HasTable("user_sessions"), "migrating acme must not touch beta")
	hb.Release()

	require.NoError(t, p.DropStore(ctx, acme))
	exists, err := p.admin.Exists(ctx, beta.DatabaseName)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProvisioner_DropStore(t *testing.T) {
	ctx := context.Background()
	p, reg := newSQLiteProvisioner(t)
	acme := activeTenant(1, "acme")

	require.NoError(t, p.CreateStore(ctx, acme))
	_, err := p.Migrate(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, p.DropStore(ctx, acme))
	assert.Equal(t, 0, reg.Len())

	exists, err := p.admin.Exists(ctx, acme.DatabaseName)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, p.DropStore(ctx, acme), "dropping a missing store is a no-op")
}

func TestProvisioner_RejectsUnsafeDatabaseName(t *testing.T) {
	p, _ := newSQLiteProvisioner(t)
	bad := activeTenant(1, "acme")
	bad.DatabaseName = "acme`; DROP DATABASE directory; --"

	err := p.CreateStore(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
	assert.True(t, errors.HasCode(p.DropStore(context.Background(), bad), errors.CodeValidation))
}
