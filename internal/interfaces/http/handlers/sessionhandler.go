package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type SessionHandler struct {
	sessions       sessionService
	timeoutMinutes int
	cookieConfig   config.CookieConfig
	logger         logger.Interface
}

func NewSessionHandler(sessions sessionService, timeoutMinutes int, cookieConfig config.CookieConfig, logger logger.Interface) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		timeoutMinutes: timeoutMinutes,
		cookieConfig:   cookieConfig,
		logger:         logger,
	}
}

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	IPAddress    string    `json:"ip_address"`
	DeviceType   string    `json:"device_type"`
	DeviceName   string    `json:"device_name"`
	Browser      string    `json:"browser"`
	Platform     string    `json:"platform"`
	Location     string    `json:"location,omitempty"`
	IsCurrent    bool      `json:"is_current"`
	IsThisDevice bool      `json:"is_this_device"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

func toSessionResponse(s *session.UserSession, callerSessionID string) SessionResponse {
	return SessionResponse{
		SessionID:    s.SessionID,
		IPAddress:    s.IPAddress,
		DeviceType:   string(s.DeviceType),
		DeviceName:   s.DeviceName,
		Browser:      s.Browser,
		Platform:     s.Platform,
		Location:     s.Location,
		IsCurrent:    s.IsCurrent,
		IsThisDevice: s.SessionID == callerSessionID,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
	}
}

func (h *SessionHandler) List(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)
	callerSessionID := c.GetString(constants.ContextKeySessionID)

	list, err := h.sessions.GetActiveSessions(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]SessionResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toSessionResponse(s, callerSessionID))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)
	target := c.Param("session_id")
	if target == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("session id is required"))
		return
	}

	ok, err := h.sessions.LogoutSession(c.Request.Context(), userID, target)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("session not found"))
		return
	}

	if target == c.GetString(constants.ContextKeySessionID) {
		utils.ClearAccessTokenCookie(c, h.cookieConfig)
	}
	utils.NoContentResponse(c)
}

func (h *SessionHandler) LogoutOthers(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)
	keep := c.GetString(constants.ContextKeySessionID)

	count, err := h.sessions.LogoutOtherSessions(c.Request.Context(), userID, keep)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "other sessions logged out", gin.H{"logged_out": count})
}

// Cleanup logs out every idle session of the current tenant.
func (h *SessionHandler) Cleanup(c *gin.Context) {
	count, err := h.sessions.CleanupExpiredSessions(c.Request.Context(), h.timeoutMinutes)
	if err != nil {
		h.logger.Errorw("session cleanup failed", "error", err, "tenant", c.GetString(constants.ContextKeyTenantKey))
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "expired sessions cleaned up", gin.H{"logged_out": count})
}
