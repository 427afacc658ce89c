package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService   *auth.JWTService
	cookieConfig config.CookieConfig
	logger       logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, cookieConfig config.CookieConfig, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

// RequireAuth accepts a bearer token or the access token cookie. The token
// must have been issued for the tenant the request resolved to.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		utils.AbortWithError(c, errors.NewUnauthenticatedError("missing authorization token"))
		return false
	}

	claims, err := m.jwtService.Verify(token)
	if err != nil {
		m.logger.Warnw("failed to verify token", "error", err)
		utils.ClearAccessTokenCookie(c, m.cookieConfig)
		utils.AbortWithError(c, errors.NewUnauthenticatedError("invalid or expired token"))
		return false
	}

	if !m.sameTenant(c, claims) {
		m.logger.Warnw("token presented to another tenant",
			"user_id", claims.UserID,
			"token_tenant_id", claims.TenantID,
			"tenant", c.GetString(constants.ContextKeyTenantKey))
		utils.ClearAccessTokenCookie(c, m.cookieConfig)
		utils.AbortWithError(c, errors.NewUnauthenticatedError("token was issued for another tenant"))
		return false
	}

	setIdentity(c, claims)
	return true
}

func (m *AuthMiddleware) sameTenant(c *gin.Context, claims *auth.Claims) bool {
	tc, ok := tenancy.FromContext(c.Request.Context())
	return ok && tc.Tenant.ID == claims.TenantID
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(constants.ContextKeyUserID, claims.UserID)
	c.Set(constants.ContextKeySessionID, claims.SessionID)
	c.Set(constants.ContextKeyUserRole, string(claims.Role))
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader(constants.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return utils.GetTokenFromCookie(c, utils.AccessTokenCookie)
}
