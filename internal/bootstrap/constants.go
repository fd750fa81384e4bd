package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older log files kept next to the new one
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized   = "Logging initialized"
	LogMsgStartingRespawnQueue = "Starting respawn queue"
	LogMsgConfigurationLoaded  = "Configuration loaded"
	ErrMsgFailedCreateLogsDir  = "failed to create logs directory"
	ErrMsgFailedOpenLogFile    = "failed to open log file"
	LogMsgFailedDeleteOldLog   = "Failed to delete old log file %s: %v\n"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	ErrMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	ErrMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

const (
	LogMsgFeedBridgeRegistered       = "Change feed bridge registered"
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgDispatcherRegistered       = "Notification dispatcher registered"
	ErrMsgFailedRegisterFeedGauge    = "failed to register feed client gauge"
)

// =============================================================================
// Background Work
// =============================================================================

const (
	// WorkerPoolSize is the number of goroutines serving scheduled jobs
	WorkerPoolSize = 2

	// WorkerQueueSize bounds queued scheduled jobs
	WorkerQueueSize = 16
)

const (
	LogMsgBackgroundStarted       = "Background workers started"
	ErrMsgFailedSchedulePurge     = "failed to schedule notification purge"
	LogMsgEffectiveClaimSettings  = "Effective claim settings"
	LogMsgServicesInitialized     = "Services initialized"
	ErrMsgFailedCreateTokenIssuer = "failed to create token manager"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownWorkers        = "Shutting down background workers..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgHousekeepingShutdownFailed = "Housekeeping worker shutdown failed"
)
