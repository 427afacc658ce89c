package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Check(ctx context.Context, sessionID string) (*session.TimeoutCheck, error) {
	args := m.Called(ctx, sessionID)
	if check, _ := args.Get(0).(*session.TimeoutCheck); check != nil {
		return check, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTimeoutRouter(checker sessionChecker, bypass bool, sessionID string) (*gin.Engine, *int) {
	mw := NewSessionTimeoutMiddleware(checker, bypass, "/login", config.CookieConfig{}, logger.NewNopLogger())
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if sessionID != "" {
			testutil.SetAuthContext(c, 7, sessionID, authorization.RoleMember)
		}
		c.Next()
	})
	r.Use(mw.Enforce())
	r.GET("/api/me", func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})
	return r, &calls
}

func jsonRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestSessionTimeout_AcceptedSetsHeaders(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, "sess-1").Return(&session.TimeoutCheck{
		IdleMinutes:    10,
		TimeoutMinutes: 120,
		Remaining:      110 * time.Minute,
	}, nil)
	r, calls := newTimeoutRouter(checker, false, "sess-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, "6600", w.Header().Get(constants.HeaderSessionRemainingSeconds))
	assert.Equal(t, "7200", w.Header().Get(constants.HeaderSessionTimeoutSeconds))
}

func TestSessionTimeout_ExpiredJSON(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, "sess-1").
		Return(&session.TimeoutCheck{Expired: true}, errors.NewSessionExpiredError(121, 120))
	r, calls := newTimeoutRouter(checker, false, "sess-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, *calls)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.CodeSessionExpired), resp.Error.Code)
	assert.JSONEq(t, `{"idle_minutes":121,"timeout_minutes":120,"hint":"Please login again"}`, string(resp.Error.Details))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=;")
}

func TestSessionTimeout_NotFoundRedirectsBrowsers(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, "gone").Return(nil, errors.NewSessionNotFoundError())
	r, _ := newTimeoutRouter(checker, false, "gone")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error=session_not_found", w.Header().Get("Location"))
}

func TestSessionTimeout_XHRGetsJSON(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, "gone").Return(nil, errors.NewSessionNotFoundError())
	r, _ := newTimeoutRouter(checker, false, "gone")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(errors.CodeSessionNotFound), testutil.ErrorCode(w))
}

func TestSessionTimeout_StoreFailureIsNotALogout(t *testing.T) {
	checker := new(mockChecker)
	checker.On("Check", mock.Anything, "sess-1").Return(nil, errors.NewConnectionUnavailableError())
	r, _ := newTimeoutRouter(checker, false, "sess-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestSessionTimeout_BypassAndAnonymous(t *testing.T) {
	checker := new(mockChecker)

	r, calls := newTimeoutRouter(checker, true, "sess-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)

	r, calls = newTimeoutRouter(checker, false, "")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)

	checker.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}
