package clientsync

import "time"

// API paths
const (
	PathMe            = "/api/v1/me"
	PathUserState     = "/api/v1/me/claims"
	PathOverview      = "/api/v1/respawns"
	PathNotifications = "/api/v1/notifications"
	PathMarkReadFmt   = "/api/v1/notifications/%d/read"
	PathRPCPrefix     = "/api/v1/rpc/"
	PathFeed          = "/api/v1/feed"
)

// RPC operation names
const (
	RPCClaimRespawn = "claim_respawn"
	RPCReleaseClaim = "release_claim"
	RPCJoinQueue    = "join_respawn_queue"
	RPCLeaveQueue   = "leave_respawn_queue"
)

// Request headers
const (
	headerAPIKey        = "X-API-Key"
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerDate          = "Date"
	bearerPrefix        = "Bearer "
	contentTypeJSON     = "application/json"
	contentTypeStream   = "text/event-stream"
)

// Client defaults
const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultPollInterval    = 5 * time.Second
	DefaultDedupWindow     = 30 * time.Second
	DefaultPollLimit       = 100
	DefaultRefreshInterval = time.Minute

	// DefaultPollOverlap is how far each poll reaches behind its watermark
	DefaultPollOverlap = 15 * time.Second
	maxPollPages       = 10

	// DedupCapacity bounds the remembered notification ids
	DedupCapacity = 4096

	maxErrorBody = 1024
)

// Feed connection settings
const (
	feedInitialBackoff    = 1 * time.Second
	feedMaxBackoff        = 30 * time.Second
	feedBackoffMultiplier = 2.0
	feedBufferSize        = 64 * 1024
)

// Feed tables and stream-only event types
const (
	TableClaims        = "claims"
	TableQueueEntries  = "queue_entries"
	TableFavorites     = "favorites"
	TableNotifications = "notifications"

	feedEventConnected = "connected"
	feedEventKeepalive = "keepalive"
)

// Alert presentation per priority
const (
	AutoDismissMedium = 15 * time.Second
	AutoDismissNormal = 8 * time.Second

	SoundUrgent = "urgent"
	SoundChime  = "chime"
	SoundSoft   = "soft"
)

// Discord embed colors
const (
	colorHigh   = 0xE74C3C
	colorMedium = 0xF39C12
	colorNormal = 0x3498DB
)

// Log messages
const (
	LogMsgFeedConnected      = "Change feed connected"
	LogMsgFeedStopped        = "Change feed client stopped"
	LogMsgFeedFailed         = "Change feed connection failed"
	LogMsgFeedParseError     = "Failed to parse change event"
	LogMsgPollFailed         = "Notification poll failed"
	LogMsgRefreshFailed      = "View refresh failed"
	LogMsgMutationRolledBack = "Optimistic update rolled back"
	LogMsgAlertDelivered     = "Alert delivered"
	LogMsgAlertSinkFailed    = "Alert sink failed"
	LogMsgDuplicateSkipped   = "Duplicate notification skipped"
	LogMsgSyncStarted        = "Sync layer started"
)

// Error messages
const (
	ErrMsgUnexpectedStatus = "unexpected status %d: %s"
	ErrMsgStreamClosed     = "stream closed unexpectedly"
	ErrMsgNoClaimInView    = "claim %d is not in the local view"
)
