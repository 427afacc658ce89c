package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type sessionChecker interface {
	Check(ctx context.Context, sessionID string) (*session.TimeoutCheck, error)
}

// SessionTimeoutMiddleware rejects requests whose session is gone or idle for
// too long. It runs after RequireAuth; anonymous requests pass through.
type SessionTimeoutMiddleware struct {
	checker      sessionChecker
	bypass       bool
	loginPath    string
	cookieConfig config.CookieConfig
	logger       logger.Interface
}

func NewSessionTimeoutMiddleware(
	checker sessionChecker,
	bypass bool,
	loginPath string,
	cookieConfig config.CookieConfig,
	logger logger.Interface,
) *SessionTimeoutMiddleware {
	return &SessionTimeoutMiddleware{
		checker:      checker,
		bypass:       bypass,
		loginPath:    loginPath,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

func (m *SessionTimeoutMiddleware) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(constants.ContextKeySessionID)
		if m.bypass || sessionID == "" {
			c.Next()
			return
		}

		check, err := m.checker.Check(c.Request.Context(), sessionID)
		if err != nil {
			m.reject(c, err)
			return
		}

		if wantsJSON(c) {
			c.Header(constants.HeaderSessionRemainingSeconds, strconv.Itoa(int(check.Remaining.Seconds())))
			c.Header(constants.HeaderSessionTimeoutSeconds, strconv.Itoa(check.TimeoutMinutes*60))
		}
		c.Next()
	}
}

func (m *SessionTimeoutMiddleware) reject(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil || (appErr.ErrCode != errors.CodeSessionExpired && appErr.ErrCode != errors.CodeSessionNotFound) {
		utils.AbortWithError(c, err)
		return
	}

	utils.ClearAccessTokenCookie(c, m.cookieConfig)
	if wantsJSON(c) || m.loginPath == "" {
		utils.AbortWithError(c, appErr)
		return
	}

	target := m.loginPath + "?error=" + url.QueryEscape(strings.ToLower(string(appErr.ErrCode)))
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "/json") || strings.Contains(accept, "+json")
}
