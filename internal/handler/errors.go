package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidPathParam      = "Invalid %s"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgUnauthenticated       = "Authentication required"
	ErrMsgDatabaseUnavailable   = "database connection failed"
)

// Success messages for API responses
const (
	MsgFavoriteAdded      = "Favorite added"
	MsgFavoriteRemoved    = "Favorite removed"
	MsgRespawnDeleted     = "Respawn deleted"
	MsgNotificationRead   = "Notification marked read"
	MsgSettingsUpdated    = "Claim settings updated"
	MsgEventPublished     = "Event published"
	MsgCacheInvalidated   = "Settings cache invalidated"
	MsgHousekeepingQueued = "Housekeeping completed"
)

// Log messages
const (
	LogMsgRequestFailed   = "Request failed"
	LogMsgRPCDomainError  = "RPC rejected"
	LogMsgRPCFailed       = "RPC failed"
	LogMsgDecodeFailed    = "Failed to decode request"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
	LogMsgPublishFailed   = "Failed to publish event"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgTokenIssued     = "Issued user token"
)
