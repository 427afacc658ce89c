package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/domain/session"
	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/logger"
)

type mockInspector struct {
	mock.Mock
}

func (m *mockInspector) Execute(ctx context.Context, cmd sessionUsecases.InspectLoginCommand) []session.Finding {
	args := m.Called(ctx, cmd)
	findings, _ := args.Get(0).([]session.Finding)
	return findings
}

func newAnomalyRouter(inspector loginInspector, status int) *gin.Engine {
	mw := NewLoginAnomalyMiddleware(inspector, []string{"/api/auth/login"}, logger.NewNopLogger())
	r := gin.New()
	r.Use(withTenant(1, "acme"), mw.Inspect())
	login := func(c *gin.Context) {
		if status < 300 {
			testutil.SetAuthContext(c, 7, "sess-new", authorization.RoleMember)
			c.Set(constants.ContextKeyLoginEmail, "ann@acme.test")
		}
		c.Status(status)
	}
	r.POST("/api/auth/login", login)
	r.POST("/api/other", login)
	return r
}

func TestLoginAnomaly_InspectsSuccessfulLogin(t *testing.T) {
	inspector := new(mockInspector)
	inspector.On("Execute", mock.Anything, mock.MatchedBy(func(cmd sessionUsecases.InspectLoginCommand) bool {
		return cmd.Tenant.Subdomain == "acme" &&
			cmd.UserID == 7 &&
			cmd.SessionID == "sess-new" &&
			cmd.Email == "ann@acme.test" &&
			cmd.Meta.IPAddress == "203.0.113.9" &&
			cmd.Meta.UserAgent == "curl/8.0"
	})).Return([]session.Finding{{Type: session.FindingNewIP}})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	newAnomalyRouter(inspector, http.StatusOK).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	inspector.AssertExpectations(t)
}

func TestLoginAnomaly_SkipsFailuresAndOtherPaths(t *testing.T) {
	inspector := new(mockInspector)

	w := httptest.NewRecorder()
	newAnomalyRouter(inspector, http.StatusUnauthorized).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	newAnomalyRouter(inspector, http.StatusOK).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/other", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	inspector.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
