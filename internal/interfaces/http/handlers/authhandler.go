package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type AuthHandler struct {
	loginUseCase loginExecutor
	sessions     sessionService
	cookieConfig config.CookieConfig
	logger       logger.Interface
}

func NewAuthHandler(loginUC loginExecutor, sessions sessionService, cookieConfig config.CookieConfig, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		loginUseCase: loginUC,
		sessions:     sessions,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User        UserInfo `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
}

type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid login request", err.Error()))
		return
	}

	tc, ok := tenancy.FromContext(c.Request.Context())
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewTenantNotFoundError())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), sessionUsecases.LoginCommand{
		TenantID: tc.Tenant.ID,
		Email:    req.Email,
		Password: req.Password,
		Meta:     utils.RequestMeta(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// Read by the login anomaly middleware once this handler returns.
	c.Set(constants.ContextKeyUserID, result.User.ID)
	c.Set(constants.ContextKeySessionID, result.Session.SessionID)
	c.Set(constants.ContextKeyUserRole, string(result.User.Role))
	c.Set(constants.ContextKeyLoginEmail, result.User.Email)

	utils.SetAccessTokenCookie(c, h.cookieConfig, result.AccessToken, int(result.ExpiresIn))

	utils.SuccessResponse(c, http.StatusOK, "login successful", LoginResponse{
		User: UserInfo{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.Name,
			Role:  string(result.User.Role),
		},
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)
	sessionID := c.GetString(constants.ContextKeySessionID)
	if userID == 0 || sessionID == "" {
		utils.ErrorResponseWithError(c, errors.NewUnauthenticatedError())
		return
	}

	if _, err := h.sessions.LogoutSession(c.Request.Context(), userID, sessionID); err != nil {
		h.logger.Errorw("logout failed", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ClearAccessTokenCookie(c, h.cookieConfig)
	utils.SuccessResponse(c, http.StatusOK, "logout successful", nil)
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"user_id":    c.GetUint(constants.ContextKeyUserID),
		"session_id": c.GetString(constants.ContextKeySessionID),
		"role":       c.GetString(constants.ContextKeyUserRole),
		"tenant":     c.GetString(constants.ContextKeyTenantKey),
	})
}
