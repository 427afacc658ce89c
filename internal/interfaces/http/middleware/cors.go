package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/constants"
)

// CORS allows credentialed requests from allowedOrigins. The tenant override
// header is accepted and the session countdown headers are exposed.
func CORS(allowedOrigins []string, overrideHeader string) gin.HandlerFunc {
	if overrideHeader == "" {
		overrideHeader = constants.DefaultTenantOverrideHeader
	}
	allowHeaders := strings.Join([]string{
		"Content-Type", "Content-Length", "Accept", "Accept-Language", "Origin",
		constants.HeaderAuthorization, "Cache-Control", "X-Requested-With",
		constants.HeaderXRequestID, overrideHeader,
	}, ", ")
	exposeHeaders := strings.Join([]string{
		"Content-Length", constants.HeaderXRequestID,
		constants.HeaderSessionRemainingSeconds, constants.HeaderSessionTimeoutSeconds,
	}, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		c.Header("Access-Control-Expose-Headers", exposeHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
