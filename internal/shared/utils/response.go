package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/i18n"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Code             string      `json:"code"`
	Message          string      `json:"message"`
	MessageLocalized string      `json:"message_localized,omitempty"`
	Details          interface{} `json:"details,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorInfoFromError converts err into the public error shape. Errors that are
// not AppErrors are reported as INTERNAL_ERROR without their text.
func ErrorInfoFromError(err error, acceptLanguage string) (int, ErrorInfo) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		appErr = errors.NewInternalError("Internal server error")
	}

	info := ErrorInfo{
		Code:    string(appErr.ErrCode),
		Message: appErr.Message,
	}
	if localized, ok := i18n.Localize(acceptLanguage, appErr.Message); ok {
		info.MessageLocalized = localized
	}

	switch {
	case len(appErr.Meta) > 0:
		details := make(map[string]interface{}, len(appErr.Meta)+1)
		for k, v := range appErr.Meta {
			details[k] = v
		}
		if appErr.Details != "" {
			details["hint"] = appErr.Details
		}
		info.Details = details
	case appErr.Details != "":
		info.Details = appErr.Details
	}

	status := appErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, info
}

// ErrorResponseWithError sends an error response based on error type
func ErrorResponseWithError(c *gin.Context, err error) {
	status, info := ErrorInfoFromError(err, c.GetHeader("Accept-Language"))
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &info,
	})
}

// AbortWithError writes the error payload and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	ErrorResponseWithError(c, err)
	c.Abort()
}

// NoContentResponse sends a no content response
func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
