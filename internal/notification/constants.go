package notification

import "time"

// Retention defaults
const (
	DefaultRetention = 24 * time.Hour
	DefaultTTL       = 72 * time.Hour

	// HuntedSightingLifetime is how long a hunted_online notification stays relevant
	HuntedSightingLifetime = time.Hour

	// MaxListLimit caps a single listing request
	MaxListLimit = 500
)

// Message templates
const (
	MsgFmtNewTicket    = "Ticket #%d opened: %s"
	MsgFmtTicketUpdate = "Ticket #%d (%s) is now %s"
)

// Log messages
const (
	LogMsgDispatched         = "Notifications dispatched"
	LogMsgDispatchFailed     = "Failed to dispatch notifications"
	LogMsgPurged             = "Purged notifications"
	LogMsgPublishFailed      = "Failed to publish notification event"
	LogMsgUnhandledEventType = "Notification fan-out ignoring event"
)

// Error messages
const (
	ErrMsgDecodePayload   = "failed to decode %s payload: %w"
	ErrMsgResolveAudience = "failed to resolve audience for %s: %w"
	ErrMsgStoreFailed     = "failed to store notifications: %w"
	ErrMsgPurgeFailed     = "failed to purge notifications: %w"
)
