package routes

import (
	"github.com/gin-gonic/gin"

	"bizhub/internal/infrastructure/permission"
	"bizhub/internal/interfaces/http/handlers"
	"bizhub/internal/interfaces/http/middleware"
	"bizhub/internal/shared/authorization"
)

// SessionRouteConfig holds dependencies for session management routes.
type SessionRouteConfig struct {
	SessionHandler    *handlers.SessionHandler
	AuthMiddleware    *middleware.AuthMiddleware
	SessionTimeout    *middleware.SessionTimeoutMiddleware
	PermissionChecker *middleware.PermissionMiddleware
}

// SetupSessionRoutes configures the caller's session routes and the tenant
// admin cleanup route. Every route enforces the idle timeout.
func SetupSessionRoutes(engine *gin.Engine, cfg *SessionRouteConfig) {
	sessions := engine.Group("/api/sessions")
	sessions.Use(cfg.AuthMiddleware.RequireAuth(), cfg.SessionTimeout.Enforce())
	{
		sessions.GET("",
			cfg.PermissionChecker.RequirePermission(permission.ResourceSession, permission.ActionRead),
			cfg.SessionHandler.List)
		sessions.POST("/logout-others",
			cfg.PermissionChecker.RequirePermission(permission.ResourceSession, permission.ActionRevoke),
			cfg.SessionHandler.LogoutOthers)
		sessions.DELETE("/:session_id",
			cfg.PermissionChecker.RequirePermission(permission.ResourceSession, permission.ActionRevoke),
			cfg.SessionHandler.Delete)
	}

	admin := engine.Group("/api/admin/sessions")
	admin.Use(
		cfg.AuthMiddleware.RequireAuth(),
		cfg.SessionTimeout.Enforce(),
		cfg.PermissionChecker.RequireRole(authorization.RoleAdmin),
	)
	{
		admin.POST("/cleanup",
			cfg.PermissionChecker.RequirePermission(permission.ResourceSession, permission.ActionCleanup),
			cfg.SessionHandler.Cleanup)
	}
}
