package database

import "time"

// Pool defaults
const (
	DefaultMinConnections  = 2
	DefaultApplicationName = "respawn-queue"
	DefaultConnectRetries  = 5
	DefaultRetryDelay      = 2 * time.Second

	// Claim and priority timestamps are compared in UTC
	sessionTimeZone = "UTC"
)

// Error messages
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log messages
const (
	LogMsgConnected          = "Connected to the database"
	LogMsgWaitingForDatabase = "Database not ready, retrying"
)
