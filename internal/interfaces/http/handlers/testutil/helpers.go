package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/constants"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext creates a gin.Context with the given method, path and
// optional JSON body.
func NewTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = NewRequest(method, path, body)
	return c, w
}

// NewRequest builds a JSON request. Host defaults to example.com.
func NewRequest(method, path string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", constants.ContentTypeJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Accept", constants.ContentTypeJSON)
	return req
}

// SetTenantContext binds tc to the request the way the tenant middleware does.
func SetTenantContext(c *gin.Context, tc *tenancy.Context) {
	c.Request = c.Request.WithContext(tenancy.NewContext(c.Request.Context(), tc))
	c.Set(constants.ContextKeyTenantKey, tc.Tenant.Subdomain)
}

// SetAuthContext simulates the auth middleware.
func SetAuthContext(c *gin.Context, userID uint, sessionID string, role authorization.UserRole) {
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeySessionID, sessionID)
	c.Set(constants.ContextKeyUserRole, string(role))
}

func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

// ActiveTenant returns an active tenant record with a conventional store name.
func ActiveTenant(id uint, subdomain string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:           id,
		Name:         subdomain,
		Subdomain:    subdomain,
		DatabaseName: "tenant_" + subdomain,
		Status:       tenant.StatusActive,
	}
}

// ParseResponse parses the JSON response body into target.
func ParseResponse(w *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), target)
}

// APIResponse mirrors utils.APIResponse for test assertions.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorInfo mirrors utils.ErrorInfo for test assertions.
type ErrorInfo struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// ErrorCode returns the error code of a JSON error response, or "".
func ErrorCode(w *httptest.ResponseRecorder) string {
	var resp APIResponse
	if err := ParseResponse(w, &resp); err != nil || resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}
