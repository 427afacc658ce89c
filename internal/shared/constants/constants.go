package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderAuthorization           = "Authorization"
	HeaderXRequestID              = "X-Request-ID"
	HeaderSessionRemainingSeconds = "X-Session-Remaining-Seconds"
	HeaderSessionTimeoutSeconds   = "X-Session-Timeout-Seconds"

	// DefaultTenantOverrideHeader carries an explicit tenant routing key.
	DefaultTenantOverrideHeader = "X-Tenant-Subdomain"

	// Gin context keys set by the auth middleware
	ContextKeyUserID    = "user_id"
	ContextKeySessionID = "session_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyTenantKey = "tenant_key"

	// Set by the login handler for the anomaly interceptor
	ContextKeyLoginEmail = "login_email"

	// Content Types
	ContentTypeJSON = "application/json"

	// Directory table names
	TableTenants = "tenants"

	// Tenant store table names
	TableUsers        = "users"
	TableUserSessions = "user_sessions"
)
