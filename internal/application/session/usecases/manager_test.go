package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func newManager(clock *testClock) *SessionManager {
	return NewSessionManager(tenancy.NewRepositories(), clock.Now, logger.NewNopLogger())
}

func TestSessionManager_OnlyNewestSessionIsCurrent(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m := newManager(clock)
	u := env.createUser(t, ctx, "ann@acme.test", "pw", authorization.RoleMember)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
		_, err := m.CreateSession(ctx, u.ID, fmt.Sprintf("s%d", i), session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: desktopUA})
		require.NoError(t, err)
	}

	active, err := m.GetActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 5)

	var current []string
	for _, s := range active {
		if s.IsCurrent {
			current = append(current, s.SessionID)
		}
	}
	assert.Equal(t, []string{"s4"}, current)
}

func TestSessionManager_CreateSessionFingerprints(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	m := newManager(newTestClock())

	s, err := m.CreateSession(ctx, 1, "s1", session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: iphoneUA})
	require.NoError(t, err)
	assert.Equal(t, session.DeviceMobile, s.DeviceType)
	assert.Equal(t, "iPhone", s.DeviceName)
	assert.Equal(t, session.StateCurrent, s.State())
}

func TestSessionManager_LogoutOtherSessions(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m := newManager(clock)

	for _, id := range []string{"a", "b", "c", "d"} {
		clock.Advance(time.Minute)
		_, err := m.CreateSession(ctx, 7, id, session.RequestMeta{IPAddress: "10.0.0.1"})
		require.NoError(t, err)
	}
	ok, err := m.LogoutSession(ctx, 7, "d")
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("keep is active", func(t *testing.T) {
		n, err := m.LogoutOtherSessions(ctx, 7, "b")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		active, err := m.GetActiveSessions(ctx, 7)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "b", active[0].SessionID)
	})

	t.Run("keep is not active", func(t *testing.T) {
		n, err := m.LogoutOtherSessions(ctx, 7, "a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestSessionManager_LogoutSessionOwnership(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	m := newManager(newTestClock())

	_, err := m.CreateSession(ctx, 1, "mine", session.RequestMeta{})
	require.NoError(t, err)

	ok, err := m.LogoutSession(ctx, 2, "mine")
	require.NoError(t, err)
	assert.False(t, ok, "another user cannot end the session")

	ok, err = m.LogoutSession(ctx, 1, "mine")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.LogoutSession(ctx, 1, "mine")
	require.NoError(t, err)
	assert.False(t, ok, "already logged out")
}

func TestSessionManager_CleanupExpiredSessions(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m := newManager(clock)

	_, err := m.CreateSession(ctx, 1, "old", session.RequestMeta{})
	require.NoError(t, err)
	clock.Advance(100 * time.Minute)
	_, err = m.CreateSession(ctx, 2, "fresh", session.RequestMeta{})
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)

	n, err := m.CleanupExpiredSessions(ctx, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, err := m.GetSession(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = m.CleanupExpiredSessions(ctx, 0)
	assert.Error(t, err)
}

func TestSessionManager_RequiresTenantContext(t *testing.T) {
	m := newManager(newTestClock())

	_, err := m.GetActiveSessions(context.Background(), 1)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeTenantNotFound, appErr.ErrCode)
}

func TestSessionManager_TenantsAreIsolated(t *testing.T) {
	env := newTenantEnv(t, "acme", "beta")
	m := newManager(newTestClock())

	_, err := m.CreateSession(env.ctx(t, "acme"), 1, "acme-session", session.RequestMeta{})
	require.NoError(t, err)

	s, err := m.GetSession(env.ctx(t, "beta"), "acme-session")
	require.NoError(t, err)
	assert.Nil(t, s)
}
