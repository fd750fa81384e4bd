package logger

// Accepted LOG_LEVEL values; "warning" is an alias of "warn"
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Accepted LOG_FORMAT values
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Service names stamped on every record, one per binary
const (
	DefaultServiceName = "respawn-queue"
	SyncServiceName    = "respawn-sync"
)

const (
	DefaultVersion = "dev"

	EnvironmentDev            = "dev"
	EnvironmentProduction     = "prod"
	EnvironmentProductionLong = "production"
)

// Attribute keys. Request and user IDs are attached by FromContext.
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
	AttrKeyUserID      = "user_id"
)
