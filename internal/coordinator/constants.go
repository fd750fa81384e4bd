package coordinator

import "time"

// Claim settings cache
const (
	settingsCacheKey  = "claim_settings"
	settingsCacheSize = 1

	// DefaultSettingsCacheTTL bounds how long a settings change takes to reach the coordinator
	DefaultSettingsCacheTTL = time.Minute
)

// Log messages
const (
	LogMsgClaimCreated       = "Respawn claimed"
	LogMsgClaimReleased      = "Claim released"
	LogMsgClaimExpired       = "Overdue claim deactivated"
	LogMsgClaimRaceLost      = "Claim race lost"
	LogMsgQueueJoined        = "Joined respawn queue"
	LogMsgQueueLeft          = "Left respawn queue"
	LogMsgPriorityGranted    = "Priority granted"
	LogMsgPriorityLapsed     = "Priority lapsed"
	LogMsgExpiringWarned     = "Claim expiring warning sent"
	LogMsgSweepRespawnFailed = "Housekeeping failed for respawn"
	LogMsgSweepCompleted     = "Housekeeping sweep completed"
	LogMsgPublishFailed      = "Failed to publish coordination event"
	LogMsgSettingsFallback   = "Failed to load claim settings, using defaults"
	LogMsgSettingInvalid     = "Ignoring invalid claim setting"
	LogMsgPurgeFailed        = "Notification purge failed"
)

// Error message formats
const (
	ErrMsgBeginTxFailed     = "failed to begin coordination transaction: %w"
	ErrMsgCommitFailed      = "failed to commit coordination transaction: %w"
	ErrMsgLockFailed        = "failed to lock respawn %d: %w"
	ErrMsgLoadStateFailed   = "failed to load respawn %d state: %w"
	ErrMsgSettleFailed      = "failed to settle respawn %d: %w"
	ErrMsgScanFailed        = "housekeeping scan failed: %w"
	ErrMsgUpdateSettings    = "failed to update claim settings: %w"
	ErrMsgInvalidSettings   = "claim settings must be positive whole minutes"
	ErrMsgLoadUserState     = "failed to load user state: %w"
	ErrMsgPurgeNotification = "failed to purge notifications: %w"
)
