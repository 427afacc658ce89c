package utils

import (
	"github.com/gin-gonic/gin"

	"bizhub/internal/domain/session"
)

// RequestMeta captures the request attributes a session is fingerprinted with.
func RequestMeta(c *gin.Context) session.RequestMeta {
	return session.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
