package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/user"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/errors"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openMigratedStore(t, migration.SetTenant))

	u, err := user.NewUser("Ann@Example.com", "Ann", "$2a$04$hash", authorization.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	found, err := repo.GetByEmail(ctx, " ANN@example.com ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, authorization.RoleAdmin, found.Role)
	assert.True(t, found.CanLogin())

	missing, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup, _ := user.NewUser("ann@example.com", "Ann", "$2a$04$hash", authorization.RoleMember)
	assert.True(t, errors.HasCode(repo.Create(ctx, dup), errors.CodeConflict))

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, errors.IsNotFoundError(err))
}
