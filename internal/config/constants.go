package config

import "time"

// Server defaults
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogDir      = "logs"
	DefaultEnvironment = "dev"
	DefaultVersion     = "dev"
	DefaultDBName      = "respawnqueue"

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultJWTTTL = 30 * 24 * time.Hour

	DefaultClaimDurationGuildMinutes   = 150
	DefaultClaimDurationNeutroMinutes  = 90
	DefaultPriorityWindowMinutes       = 5
	DefaultClaimExpiringWarningMinutes = 10

	DefaultHousekeepingInterval      = 30 * time.Second
	DefaultNotificationPurgeSchedule = "@hourly"
	DefaultNotificationRetention     = 24 * time.Hour
	DefaultNotificationTTL           = 72 * time.Hour

	DefaultEventMaxRetries     = 5
	DefaultEventRetryDelay     = 2 * time.Second
	DefaultEventDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Sync daemon defaults
const (
	DefaultAPIURL       = "http://localhost:8080"
	DefaultPollInterval = 5 * time.Second
	DefaultDedupWindow  = 30 * time.Second
)

// MinJWTSecretLength is the shortest JWT secret accepted without a warning
const MinJWTSecretLength = 32
