package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type hitLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter budgets requests per tenant and client IP.
type RateLimiter struct {
	limiter hitLimiter
	logger  logger.Interface
}

func NewRateLimiter(limiter hitLimiter, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		logger:  logger,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil {
			c.Next()
			return
		}

		tenantKey := c.GetString(constants.ContextKeyTenantKey)
		if tenantKey == "" {
			tenantKey = "-"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		allowed, err := rl.limiter.Allow(ctx, tenantKey+":"+c.ClientIP())
		if err != nil {
			// Redis outages must not lock every tenant out.
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			utils.AbortWithError(c, errors.NewRateLimitedError("too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
