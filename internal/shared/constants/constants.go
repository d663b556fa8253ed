package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	HeaderAuthorization  = "Authorization"
	HeaderXRequestID     = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	// Context keys set by middleware
	ContextKeyUserID    = "user_id"
	ContextKeyEmail     = "user_email"
	ContextKeyTier      = "user_tier"
	ContextKeyRequestID = "request_id"
	ContextKeyClientIP  = "client_ip"

	TableAnonymousUsage        = "anonymous_usage_records"
	TableFeatureAllowances     = "feature_allowances"
	TableAllowanceConsumptions = "allowance_consumptions"
	TablePreviewSessions       = "preview_sessions"
)
