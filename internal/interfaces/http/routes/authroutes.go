package routes

import (
	"github.com/gin-gonic/gin"

	"bizhub/internal/interfaces/http/handlers"
	"bizhub/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	SessionTimeout *middleware.SessionTimeoutMiddleware
	LoginAnomaly   *middleware.LoginAnomalyMiddleware
	RateLimiter    *middleware.RateLimiter // may be nil without Redis
}

// SetupAuthRoutes configures authentication routes under the tenant pipeline.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	login := []gin.HandlerFunc{}
	if cfg.RateLimiter != nil {
		login = append(login, cfg.RateLimiter.Limit())
	}
	login = append(login, cfg.LoginAnomaly.Inspect(), cfg.AuthHandler.Login)

	auth := engine.Group("/api/auth")
	{
		auth.POST("/login", login...)
		auth.POST("/logout", cfg.AuthMiddleware.RequireAuth(), cfg.SessionTimeout.Enforce(), cfg.AuthHandler.Logout)
		auth.GET("/me", cfg.AuthMiddleware.RequireAuth(), cfg.SessionTimeout.Enforce(), cfg.AuthHandler.Me)
	}
}
