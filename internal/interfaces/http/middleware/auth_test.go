package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

const testSecret = "middleware-test-secret"

// withTenant stands in for the tenant middleware.
func withTenant(id uint, sub string) gin.HandlerFunc {
	return func(c *gin.Context) {
		testutil.SetTenantContext(c, &tenancy.Context{Tenant: testutil.ActiveTenant(id, sub)})
		c.Next()
	}
}

func newAuthRouter(tenantID uint) *gin.Engine {
	mw := NewAuthMiddleware(auth.NewJWTService(testSecret, 15), config.CookieConfig{Path: "/"}, logger.NewNopLogger())
	r := gin.New()
	r.Use(withTenant(tenantID, "acme"))
	r.GET("/private", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetUint(constants.ContextKeyUserID),
			"session_id": c.GetString(constants.ContextKeySessionID),
			"role":       c.GetString(constants.ContextKeyUserRole),
		})
	})
	return r
}

func issue(t *testing.T, tenantID uint) string {
	t.Helper()
	tok, err := auth.NewJWTService(testSecret, 15).Generate(7, "sess-1", tenantID, authorization.RoleMember)
	require.NoError(t, err)
	return tok.Token
}

func TestRequireAuth_BearerToken(t *testing.T) {
	r := newAuthRouter(1)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+issue(t, 1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"session_id":"sess-1","role":"member"}`, w.Body.String())
}

func TestRequireAuth_Cookie(t *testing.T) {
	r := newAuthRouter(1)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: issue(t, 1)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic " + issue(t, 1)},
		{"other tenant", "Bearer " + issue(t, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter(1)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, string(errors.CodeUnauthenticated), testutil.ErrorCode(w))
		})
	}
}

func TestRequireAuth_ForeignTenantClearsCookie(t *testing.T) {
	r := newAuthRouter(1)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: issue(t, 2)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), utils.AccessTokenCookie+"=;")
}
