package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/domain/user"
	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/infrastructure/repository"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/logger"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
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

type tenantEnv struct {
	registry *tenancy.Registry
	tenants  map[string]*tenant.Tenant
}

// newTenantEnv provisions one migrated sqlite store per subdomain.
func newTenantEnv(t *testing.T, subdomains ...string) *tenantEnv {
	t.Helper()
	ctx := context.Background()

	base := config.TenantStoreConfig{
		Driver:                config.DriverSQLite,
		DataDir:               t.TempDir(),
		MaxOpenConns:          4,
		ConnectTimeoutSeconds: 2,
	}
	reg := tenancy.NewRegistry(base, logger.NewNopLogger())
	t.Cleanup(reg.Close)
	prov := tenancy.NewProvisioner(tenancy.NewStoreAdmin(base, nil), reg, base, logger.NewNopLogger())

	env := &tenantEnv{registry: reg, tenants: map[string]*tenant.Tenant{}}
	for i, sub := range subdomains {
		tn := &tenant.Tenant{
			ID:           uint(i + 1),
			Name:         sub,
			Subdomain:    sub,
			DatabaseName: "tenant_" + sub,
			Status:       tenant.StatusActive,
		}
		require.NoError(t, prov.CreateStore(ctx, tn))
		_, err := prov.Migrate(ctx, tn)
		require.NoError(t, err)
		env.tenants[sub] = tn
	}
	return env
}

func (e *tenantEnv) ctx(t *testing.T, subdomain string) context.Context {
	t.Helper()
	tn := e.tenants[subdomain]
	h, err := e.registry.Get(context.Background(), tn)
	require.NoError(t, err)
	return tenancy.NewContext(context.Background(), &tenancy.Context{Tenant: tn, Handle: h})
}

func (e *tenantEnv) createUser(t *testing.T, ctx context.Context, email, password string, role authorization.UserRole) *user.User {
	t.Helper()
	hash, err := auth.NewBcryptPasswordHasher(4).Hash(password)
	require.NoError(t, err)
	u, err := user.NewUser(email, "Test User", hash, role)
	require.NoError(t, err)

	tc, _ := tenancy.FromContext(ctx)
	require.NoError(t, repository.NewUserRepository(tc.Handle.DB()).Create(ctx, u))
	return u
}
