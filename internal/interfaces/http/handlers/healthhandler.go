package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
	logger logger.Interface
}

func NewHealthHandler(checks map[string]ReadinessCheck, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	failed := false
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warnw("readiness check failed", "check", name, "error", err)
			status[name] = "unavailable"
			failed = true
			continue
		}
		status[name] = "ok"
	}

	if failed {
		utils.ErrorResponseWithError(c, errors.NewConnectionUnavailableError().WithMeta("checks", status))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
}
