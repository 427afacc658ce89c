package authorization

import (
	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/utils"
)

// RequireRole rejects callers whose role ranks below min.
func RequireRole(min UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ParseUserRole(c.GetString(constants.ContextKeyUserRole))
		if !role.AtLeast(min) {
			utils.AbortWithError(c, errors.NewInsufficientRoleError(string(min)))
			return
		}
		c.Next()
	}
}
