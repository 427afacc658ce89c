package http

import (
	"context"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/interfaces/http/handlers"
	"bizhub/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler  *handlers.HealthHandler
	authHandler    *handlers.AuthHandler
	sessionHandler *handlers.SessionHandler
}

// allMiddlewares holds the request pipeline stages. rateLimiter is nil when
// Redis is not configured.
type allMiddlewares struct {
	tenant         *middleware.TenantMiddleware
	auth           *middleware.AuthMiddleware
	sessionTimeout *middleware.SessionTimeoutMiddleware
	loginAnomaly   *middleware.LoginAnomalyMiddleware
	permission     *middleware.PermissionMiddleware
	rateLimiter    *middleware.RateLimiter
}

// CleanupJob runs one idle session sweep across every active tenant.
type CleanupJob struct {
	uc *sessionUsecases.CleanupAllTenantsUseCase
}

func (j *CleanupJob) Execute(ctx context.Context) (int, error) {
	return j.uc.Execute(ctx)
}

func (c *Container) initHandlers() {
	cookieCfg := c.cfg.Auth.Cookie
	log := c.log.Named("http")

	c.hdlrs = &allHandlers{
		healthHandler:  handlers.NewHealthHandler(c.readinessChecks(), log),
		authHandler:    handlers.NewAuthHandler(c.ucs.loginUC, c.ucs.sessionManager, cookieCfg, log),
		sessionHandler: handlers.NewSessionHandler(c.ucs.sessionManager, c.ucs.timeoutEnforcer.TimeoutMinutes(), cookieCfg, log),
	}

	c.mws = &allMiddlewares{
		tenant: middleware.NewTenantMiddleware(c.ucs.resolveTenantUC, middleware.TenantOptions{
			OverrideHeader:   c.cfg.Tenancy.OverrideHeader,
			LocalRootDomains: c.cfg.Tenancy.LocalRootDomains,
			SkipPaths:        c.cfg.Tenancy.SkipPaths,
		}, log),
		auth: middleware.NewAuthMiddleware(c.svcs.jwtSvc, cookieCfg, log),
		sessionTimeout: middleware.NewSessionTimeoutMiddleware(
			c.ucs.timeoutEnforcer,
			c.cfg.Session.Bypass,
			c.cfg.Server.LoginPath,
			cookieCfg,
			log,
		),
		loginAnomaly: middleware.NewLoginAnomalyMiddleware(c.ucs.inspectLoginUC, c.cfg.Anomaly.LoginPaths, log),
		permission:   middleware.NewPermissionMiddleware(c.svcs.enforcer, log),
	}
	if c.svcs.loginLimiter != nil {
		c.mws.rateLimiter = middleware.NewRateLimiter(c.svcs.loginLimiter, log)
	}
}

func (c *Container) readinessChecks() map[string]handlers.ReadinessCheck {
	checks := map[string]handlers.ReadinessCheck{
		"directory": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}
	return checks
}
