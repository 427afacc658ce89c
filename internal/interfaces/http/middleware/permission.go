package middleware

import (
	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type policyEnforcer interface {
	Enforce(role authorization.UserRole, resource, action string) (bool, error)
}

type PermissionMiddleware struct {
	enforcer policyEnforcer
	logger   logger.Interface
}

func NewPermissionMiddleware(enforcer policyEnforcer, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		enforcer: enforcer,
		logger:   logger,
	}
}

// RequirePermission checks the caller's role against the casbin policy for
// (resource, action).
func (m *PermissionMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetString(constants.ContextKeyUserRole)
		if raw == "" {
			utils.AbortWithError(c, errors.NewUnauthenticatedError())
			return
		}
		role := authorization.ParseUserRole(raw)

		allowed, err := m.enforcer.Enforce(role, resource, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "role", role, "resource", resource, "action", action)
			utils.AbortWithError(c, errors.NewInternalError("permission check failed"))
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied",
				"user_id", c.GetUint(constants.ContextKeyUserID),
				"role", role,
				"resource", resource,
				"action", action)
			utils.AbortWithError(c, errors.NewInsufficientPermissionsError(resource+":"+action))
			return
		}

		c.Next()
	}
}

// RequireRole is a shortcut for the role ladder check.
func (m *PermissionMiddleware) RequireRole(min authorization.UserRole) gin.HandlerFunc {
	return authorization.RequireRole(min)
}
