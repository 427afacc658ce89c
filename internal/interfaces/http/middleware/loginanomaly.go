package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type loginInspector interface {
	Execute(ctx context.Context, cmd sessionUsecases.InspectLoginCommand) []session.Finding
}

// LoginAnomalyMiddleware inspects successful logins after the handler ran.
// It never changes the response.
type LoginAnomalyMiddleware struct {
	inspector  loginInspector
	loginPaths map[string]struct{}
	logger     logger.Interface
}

func NewLoginAnomalyMiddleware(inspector loginInspector, loginPaths []string, logger logger.Interface) *LoginAnomalyMiddleware {
	paths := make(map[string]struct{}, len(loginPaths))
	for _, p := range loginPaths {
		paths[p] = struct{}{}
	}
	return &LoginAnomalyMiddleware{
		inspector:  inspector,
		loginPaths: paths,
		logger:     logger,
	}
}

func (m *LoginAnomalyMiddleware) Inspect() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodPost {
			return
		}
		if _, ok := m.loginPaths[c.FullPath()]; !ok {
			if _, ok := m.loginPaths[c.Request.URL.Path]; !ok {
				return
			}
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}

		tc, ok := tenancy.FromContext(c.Request.Context())
		userID := c.GetUint(constants.ContextKeyUserID)
		sessionID := c.GetString(constants.ContextKeySessionID)
		if !ok || userID == 0 || sessionID == "" {
			m.logger.Debugw("login response without session, skipping anomaly check", "path", c.Request.URL.Path)
			return
		}

		findings := m.inspector.Execute(c.Request.Context(), sessionUsecases.InspectLoginCommand{
			Tenant:    tc.Tenant,
			UserID:    userID,
			Email:     c.GetString(constants.ContextKeyLoginEmail),
			SessionID: sessionID,
			Meta:      utils.RequestMeta(c),
		})
		if len(findings) > 0 {
			c.Set("login_anomalies", findings)
		}
	}
}
