package errors

import (
	"net/http"
)

// Sentinels for errors.Is comparisons. Use the constructors below to build
// errors that are returned to callers.
var (
	ErrTenantNotFound        = &AppError{ErrCode: CodeTenantNotFound}
	ErrSessionNotFound       = &AppError{ErrCode: CodeSessionNotFound}
	ErrSessionExpired        = &AppError{ErrCode: CodeSessionExpired}
	ErrConnectionUnavailable = &AppError{ErrCode: CodeConnectionUnavailable}
	ErrUnauthenticated       = &AppError{ErrCode: CodeUnauthenticated}
)

// NewTenantNotFoundError is returned when no routing key could be extracted or
// the key does not match an active tenant.
func NewTenantNotFoundError(details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, CodeTenantNotFound, http.StatusNotFound, "Tenant not found", details)
}

// NewSessionNotFoundError is returned when an authenticated request has no
// matching active session row.
func NewSessionNotFoundError() *AppError {
	return newAppError(ErrorTypeUnauthorized, CodeSessionNotFound, http.StatusUnauthorized,
		"Session not found", []string{"Please login again"})
}

// NewSessionExpiredError is returned when a session was idle longer than the
// configured timeout.
func NewSessionExpiredError(idleMinutes, timeoutMinutes int) *AppError {
	return newAppError(ErrorTypeUnauthorized, CodeSessionExpired, http.StatusUnauthorized,
		"Session has expired", []string{"Please login again"}).
		WithMeta("idle_minutes", idleMinutes).
		WithMeta("timeout_minutes", timeoutMinutes)
}

// NewConnectionUnavailableError is returned when a tenant store or the
// directory cannot be reached.
func NewConnectionUnavailableError(details ...string) *AppError {
	return newAppError(ErrorTypeUnavailable, CodeConnectionUnavailable, http.StatusServiceUnavailable,
		"Data store unavailable", details)
}

// NewUnauthenticatedError is returned when a request lacks valid credentials.
func NewUnauthenticatedError(details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, CodeUnauthenticated, http.StatusUnauthorized,
		"Authentication required", details)
}

// NewInsufficientRoleError is returned when the caller's role is below the
// role a route requires.
func NewInsufficientRoleError(details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, CodeInsufficientRole, http.StatusForbidden,
		"Insufficient role", details)
}

// NewInsufficientPermissionsError is returned when the permission policy denies
// the requested action.
func NewInsufficientPermissionsError(details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, CodeInsufficientPermissions, http.StatusForbidden,
		"Insufficient permissions", details)
}
