package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	tenantUsecases "bizhub/internal/application/tenant/usecases"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type tenantResolver interface {
	Execute(ctx context.Context, key string) (*tenancy.Context, error)
}

type TenantOptions struct {
	OverrideHeader   string
	LocalRootDomains []string
	// SkipPaths entries match exactly, or by prefix when they end in "/*".
	SkipPaths []string
}

// TenantMiddleware binds every request to the tenant named by its host or
// override header. The binding lives in the request context only.
type TenantMiddleware struct {
	resolver tenantResolver
	opts     TenantOptions
	logger   logger.Interface
}

func NewTenantMiddleware(resolver tenantResolver, opts TenantOptions, logger logger.Interface) *TenantMiddleware {
	if opts.OverrideHeader == "" {
		opts.OverrideHeader = constants.DefaultTenantOverrideHeader
	}
	return &TenantMiddleware{
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.skipped(c.Request.URL.Path) {
			c.Next()
			return
		}

		key, ok := tenantUsecases.ExtractTenantKey(c.Request.Host, c.GetHeader(m.opts.OverrideHeader), m.opts.LocalRootDomains)
		if !ok {
			m.logger.Debugw("no tenant key in request", "host", c.Request.Host, "path", c.Request.URL.Path)
			utils.AbortWithError(c, errors.NewTenantNotFoundError())
			return
		}

		tc, err := m.resolver.Execute(c.Request.Context(), key)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		defer tc.Release()

		c.Request = c.Request.WithContext(tenancy.NewContext(c.Request.Context(), tc))
		c.Set(constants.ContextKeyTenantKey, tc.Tenant.Subdomain)
		c.Next()
	}
}

func (m *TenantMiddleware) skipped(path string) bool {
	for _, p := range m.opts.SkipPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// TenantFromContext returns the binding attached by Resolve.
func TenantFromContext(c *gin.Context) (*tenancy.Context, bool) {
	return tenancy.FromContext(c.Request.Context())
}
