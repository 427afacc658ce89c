package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenantUsecases "bizhub/internal/application/tenant/usecases"
	userUsecases "bizhub/internal/application/user/usecases"
	"bizhub/internal/domain/tenant"
	appConfig "bizhub/internal/infrastructure/config"
	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/interfaces/http/handlers"
	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testApp struct {
	container *Container
	clock     *testClock
}

func testConfig(dataDir string) *appConfig.Config {
	return &appConfig.Config{
		Server: config.ServerConfig{LoginPath: "/login"},
		TenantStore: config.TenantStoreConfig{
			Driver:                config.DriverSQLite,
			DataDir:               dataDir,
			DatabasePrefix:        "tenant_",
			MaxOpenConns:          4,
			ConnectTimeoutSeconds: 2,
		},
		Tenancy: config.TenancyConfig{
			OverrideHeader:           constants.DefaultTenantOverrideHeader,
			LocalRootDomains:         []string{"localhost"},
			SkipPaths:                []string{"/healthz", "/readyz"},
			TouchIntervalSeconds:     60,
			DirectoryCacheTTLSeconds: 30,
		},
		Session: config.SessionConfig{TimeoutMinutes: 120},
		Anomaly: config.AnomalyConfig{LoginPaths: []string{"/api/auth/login"}},
		Auth: config.AuthConfig{
			JWT:            config.JWTConfig{Secret: "router-test-secret", AccessExpMinutes: 60},
			Cookie:         config.CookieConfig{Path: "/"},
			BcryptCost:     4,
			LoginRateLimit: 100,
		},
	}
}

// newTestApp builds the full pipeline on sqlite stores and miniredis, with
// tenants acme and beta provisioned and one admin user in acme.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	directory, err := database.Open(ctx, database.StoreConfig{
		Name:   "directory",
		Driver: config.DriverSQLite,
		DSN:    database.SQLiteDSN(filepath.Join(dir, "directory.db")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(directory) })
	_, err = migration.NewRunner(migration.SetDirectory, logger.NewNopLogger()).Up(ctx, directory)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c, err := NewContainer(directory, rdb, testConfig(filepath.Join(dir, "tenants")), logger.NewNopLogger(), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	c.SetupRoutes()

	admin := c.TenantAdmin()
	for _, sub := range []string{"acme", "beta"} {
		_, err := admin.Provision.Execute(ctx, tenantUsecases.ProvisionTenantCommand{Name: sub, Subdomain: sub})
		require.NoError(t, err)
	}

	tc, err := admin.Resolve.Execute(ctx, "acme")
	require.NoError(t, err)
	defer tc.Release()
	_, err = admin.AddUser.Execute(tenancy.NewContext(ctx, tc), userUsecases.CreateUserCommand{
		Email:    "ann@acme.test",
		Name:     "Ann",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.NoError(t, err)

	return &testApp{container: c, clock: clock}
}

func (a *testApp) do(method, host, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = host
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.container.Engine().ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, host string) string {
	t.Helper()
	w := a.do(http.MethodPost, host, "/api/auth/login",
		map[string]string{"email": "ann@acme.test", "password": "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var body handlers.LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func bearer(token string) map[string]string {
	return map[string]string{constants.HeaderAuthorization: "Bearer " + token}
}

func TestRouter_HealthBypassesTenantResolution(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "example", "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "example", "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
}

func TestRouter_TenantResolution(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "example", "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TENANT_NOT_FOUND", testutil.ErrorCode(w))

	w = app.do(http.MethodGet, "ghost.app.example", "/api/auth/me", nil, nil)
	assert.Equal(t, "TENANT_NOT_FOUND", testutil.ErrorCode(w))

	token := app.login(t, "acme.app.example")
	w = app.do(http.MethodGet, "acme.app.example", "/api/auth/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenant":"acme"`)

	// The override header routes the same host to beta, where acme's token
	// is not valid.
	headers := bearer(token)
	headers[constants.DefaultTenantOverrideHeader] = "beta"
	w = app.do(http.MethodGet, "acme.app.example", "/api/auth/me", nil, headers)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", testutil.ErrorCode(w))
}

func TestRouter_TenantStoresAreIsolated(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "beta.localhost:8080", "/api/auth/login",
		map[string]string{"email": "ann@acme.test", "password": "correct-horse"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", testutil.ErrorCode(w))
}

func TestRouter_SessionLifecycle(t *testing.T) {
	app := newTestApp(t)
	host := "acme.app.example"
	token := app.login(t, host)

	w := app.do(http.MethodGet, host, "/api/sessions", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "7200", w.Header().Get("X-Session-Timeout-Seconds"))

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var list []handlers.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].IsThisDevice)
	assert.True(t, list[0].IsCurrent)

	w = app.do(http.MethodPost, host, "/api/admin/sessions/cleanup", nil, bearer(token))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	app.clock.Advance(121 * time.Minute)

	w = app.do(http.MethodGet, host, "/api/sessions", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_EXPIRED", testutil.ErrorCode(w))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=;")

	w = app.do(http.MethodGet, host, "/api/sessions", nil, map[string]string{
		constants.HeaderAuthorization: "Bearer " + token,
		"Accept":                      "text/html",
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?error=")
}

func TestRouter_SuspendedTenantStopsResolving(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.login(t, "acme.app.example")

	_, err := app.container.TenantAdmin().SetStatus.Execute(ctx, "acme", tenant.StatusSuspended)
	require.NoError(t, err)

	w := app.do(http.MethodGet, "acme.app.example", "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TENANT_NOT_FOUND", testutil.ErrorCode(w))

	_, err = app.container.TenantAdmin().SetStatus.Execute(ctx, "acme", tenant.StatusActive)
	require.NoError(t, err)
	app.login(t, "acme.app.example")
}

func TestRouter_AuthRoutesEnforceSessionState(t *testing.T) {
	app := newTestApp(t)
	host := "acme.app.example"
	token := app.login(t, host)

	w := app.do(http.MethodGet, host, "/api/auth/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "7200", w.Header().Get("X-Session-Timeout-Seconds"))

	w = app.do(http.MethodPost, host, "/api/auth/logout", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodGet, host, "/api/auth/me", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", testutil.ErrorCode(w))

	w = app.do(http.MethodPost, host, "/api/auth/logout", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", testutil.ErrorCode(w))

	fresh := app.login(t, host)
	app.clock.Advance(121 * time.Minute)

	w = app.do(http.MethodGet, host, "/api/auth/me", nil, bearer(fresh))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_EXPIRED", testutil.ErrorCode(w))
}
