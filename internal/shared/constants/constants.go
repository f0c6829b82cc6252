package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderXRequestID    = "X-Request-ID"
	HeaderPrincipal     = "X-Principal"
	HeaderPrincipalRole = "X-Principal-Role"

	// Context keys
	ContextKeyPrincipal     = "principal"
	ContextKeyPrincipalRole = "principal_role"

	// Principal recorded when the gateway in front of us does not identify the caller
	DefaultPrincipal = "anonymous"

	// Database table names
	TableOwners        = "owners"
	TableProducts      = "products"
	TableSubscriptions = "subscriptions"
	TablePools         = "pools"
	TableEntitlements  = "entitlements"
	TableConsumers     = "consumers"
	TableGuestMappings = "guest_mappings"
	TableJobs          = "jobs"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgForbidden           = "Access forbidden"
)
