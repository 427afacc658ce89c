package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func TestTimeoutEnforcer_ExpiresIdleSession(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m := newManager(clock)
	enforcer := NewTimeoutEnforcer(tenancy.NewRepositories(), 120, clock.Now, logger.NewNopLogger())

	_, err := m.CreateSession(ctx, 1, "s1", session.RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	clock.Advance(150 * time.Minute)

	check, err := enforcer.Check(ctx, "s1")
	require.Error(t, err)
	require.NotNil(t, check)
	assert.True(t, check.Expired)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeSessionExpired, appErr.ErrCode)
	assert.Equal(t, 150, appErr.Meta["idle_minutes"])
	assert.Equal(t, 120, appErr.Meta["timeout_minutes"])

	s, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, s, "expired session is logged out")

	_, err = enforcer.Check(ctx, "s1")
	assert.Equal(t, errors.CodeSessionNotFound, errors.GetAppError(err).ErrCode)
}

func TestTimeoutEnforcer_AcceptsAndAdvancesActivity(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m := newManager(clock)
	enforcer := NewTimeoutEnforcer(tenancy.NewRepositories(), 120, clock.Now, logger.NewNopLogger())

	_, err := m.CreateSession(ctx, 1, "s1", session.RequestMeta{})
	require.NoError(t, err)
	clock.Advance(120 * time.Minute)

	check, err := enforcer.Check(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, check.Expired)
	assert.Equal(t, 120, check.IdleMinutes)
	assert.Equal(t, 120*time.Minute, check.Remaining)

	s, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.LastActivity.Equal(clock.Now()))

	// idle time restarts from the accepted request
	clock.Advance(119 * time.Minute)
	_, err = enforcer.Check(ctx, "s1")
	assert.NoError(t, err)
}

func TestTimeoutEnforcer_UnknownSession(t *testing.T) {
	env := newTenantEnv(t, "acme")
	enforcer := NewTimeoutEnforcer(tenancy.NewRepositories(), 0, nil, logger.NewNopLogger())
	assert.Equal(t, DefaultTimeoutMinutes, enforcer.TimeoutMinutes())

	_, err := enforcer.Check(env.ctx(t, "acme"), "missing")
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeSessionNotFound, appErr.ErrCode)
}
