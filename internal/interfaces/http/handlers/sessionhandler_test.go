package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func newSessionHandler(sessions sessionService) *SessionHandler {
	return NewSessionHandler(sessions, 120, config.CookieConfig{}, logger.NewNopLogger())
}

func TestSessionHandler_ListMarksCaller(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions := new(mockSessions)
	sessions.On("GetActiveSessions", mock.Anything, uint(7)).Return([]*session.UserSession{
		{SessionID: "phone", DeviceType: session.DeviceMobile, IsCurrent: true, LastActivity: now},
		{SessionID: "laptop", DeviceType: session.DeviceDesktop, LastActivity: now.Add(-time.Hour)},
	}, nil)
	h := newSessionHandler(sessions)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/sessions", nil)
	testutil.SetAuthContext(c, 7, "laptop", authorization.RoleMember)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var items []SessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 2)
	assert.True(t, items[0].IsCurrent)
	assert.False(t, items[0].IsThisDevice)
	assert.True(t, items[1].IsThisDevice)
	assert.Equal(t, "desktop", items[1].DeviceType)
}

func TestSessionHandler_Delete(t *testing.T) {
	sessions := new(mockSessions)
	sessions.On("LogoutSession", mock.Anything, uint(7), "phone").Return(true, nil)
	sessions.On("LogoutSession", mock.Anything, uint(7), "ghost").Return(false, nil)
	h := newSessionHandler(sessions)

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/sessions/phone", nil)
	testutil.SetAuthContext(c, 7, "laptop", authorization.RoleMember)
	testutil.SetURLParam(c, "session_id", "phone")
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"), "revoking another device keeps our cookie")

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/sessions/ghost", nil)
	testutil.SetAuthContext(c, 7, "laptop", authorization.RoleMember)
	testutil.SetURLParam(c, "session_id", "ghost")
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(errors.CodeNotFound), testutil.ErrorCode(w))
}

func TestSessionHandler_LogoutOthers(t *testing.T) {
	sessions := new(mockSessions)
	sessions.On("LogoutOtherSessions", mock.Anything, uint(7), "laptop").Return(int64(2), nil)
	h := newSessionHandler(sessions)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sessions/logout-others", nil)
	testutil.SetAuthContext(c, 7, "laptop", authorization.RoleMember)
	h.LogoutOthers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logged_out":2`)
}

func TestSessionHandler_Cleanup(t *testing.T) {
	sessions := new(mockSessions)
	sessions.On("CleanupExpiredSessions", mock.Anything, 120).Return(int64(5), nil)
	h := newSessionHandler(sessions)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/sessions/cleanup", nil)
	testutil.SetAuthContext(c, 1, "admin-session", authorization.RoleAdmin)
	h.Cleanup(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logged_out":5`)
}
