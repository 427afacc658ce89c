package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func newLoginUseCase(clock *testClock, jwt *auth.JWTService) *LoginUseCase {
	return NewLoginUseCase(
		tenancy.NewRepositories(),
		newManager(clock),
		auth.NewBcryptPasswordHasher(4),
		jwt,
		logger.NewNopLogger(),
	)
}

func TestLoginUseCase_Success(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	u := env.createUser(t, ctx, "Ann@Acme.test", "s3cret", authorization.RoleAdmin)
	jwt := auth.NewJWTService("secret", 15)

	result, err := newLoginUseCase(newTestClock(), jwt).Execute(ctx, LoginCommand{
		TenantID: 1,
		Email:    "ann@acme.test",
		Password: "s3cret",
		Meta:     session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: desktopUA},
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, result.User.ID)
	assert.True(t, result.Session.IsCurrent)
	assert.NotEmpty(t, result.Session.SessionID)

	claims, err := jwt.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.Session.SessionID, claims.SessionID)
	assert.Equal(t, uint(1), claims.TenantID)
	assert.Equal(t, authorization.RoleAdmin, claims.Role)
}

func TestLoginUseCase_Rejections(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	env.createUser(t, ctx, "ann@acme.test", "s3cret", authorization.RoleMember)
	uc := newLoginUseCase(newTestClock(), auth.NewJWTService("secret", 15))

	for name, cmd := range map[string]LoginCommand{
		"wrong password": {Email: "ann@acme.test", Password: "nope"},
		"unknown email":  {Email: "bob@acme.test", Password: "s3cret"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Execute(ctx, cmd)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.CodeUnauthenticated, appErr.ErrCode)
			assert.Equal(t, "invalid email or password", appErr.Details)
		})
	}

	active, err := newManager(newTestClock()).GetActiveSessions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, active, "failed logins open no session")
}

func TestLoginUseCase_UsersAreTenantLocal(t *testing.T) {
	env := newTenantEnv(t, "acme", "beta")
	env.createUser(t, env.ctx(t, "acme"), "ann@acme.test", "s3cret", authorization.RoleMember)
	uc := newLoginUseCase(newTestClock(), auth.NewJWTService("secret", 15))

	_, err := uc.Execute(env.ctx(t, "beta"), LoginCommand{Email: "ann@acme.test", Password: "s3cret"})
	require.Error(t, err)

	_, err = uc.Execute(context.Background(), LoginCommand{Email: "ann@acme.test", Password: "s3cret"})
	assert.Equal(t, errors.CodeTenantNotFound, errors.GetAppError(err).ErrCode)
}
