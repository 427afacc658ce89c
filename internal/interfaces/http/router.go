package http

import (
	"bizhub/internal/interfaces/http/middleware"
	"bizhub/internal/interfaces/http/routes"
)

// SetupRoutes configures the request pipeline and all HTTP routes. Tenant
// resolution runs for every request outside the configured skip paths, before
// any handler that touches tenant data.
func (c *Container) SetupRoutes() {
	r := c.engine

	r.Use(middleware.CustomLogger(c.log.Named("access")))
	r.Use(middleware.Recovery(c.log))
	r.Use(middleware.ErrorHandler(c.log))
	r.Use(middleware.CORS(c.cfg.Server.AllowedOrigins, c.cfg.Tenancy.OverrideHeader))
	r.Use(middleware.SecurityHeaders())
	r.Use(c.mws.tenant.Resolve())

	r.GET("/healthz", c.hdlrs.healthHandler.Healthz)
	r.GET("/readyz", c.hdlrs.healthHandler.Readyz)

	routes.SetupAuthRoutes(r, &routes.AuthRouteConfig{
		AuthHandler:    c.hdlrs.authHandler,
		AuthMiddleware: c.mws.auth,
		SessionTimeout: c.mws.sessionTimeout,
		LoginAnomaly:   c.mws.loginAnomaly,
		RateLimiter:    c.mws.rateLimiter,
	})

	routes.SetupSessionRoutes(r, &routes.SessionRouteConfig{
		SessionHandler:    c.hdlrs.sessionHandler,
		AuthMiddleware:    c.mws.auth,
		SessionTimeout:    c.mws.sessionTimeout,
		PermissionChecker: c.mws.permission,
	})
}
