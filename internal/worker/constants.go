package worker

import "time"

// DefaultJobTimeout bounds a single pooled job
const DefaultJobTimeout = 2 * time.Minute

// Log messages - worker pool
const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgQueueFull       = "Worker queue full, dropping job"
)

// Log messages - housekeeping worker
const (
	LogMsgHousekeepingStarted   = "Housekeeping worker started"
	LogMsgHousekeepingSkipped   = "Housekeeping already running, skipping"
	LogMsgHousekeepingCompleted = "Housekeeping run completed"
	LogMsgHousekeepingFailed    = "Housekeeping run failed"
)

// Name used in shutdown log lines
const housekeepingWorkerName = "housekeeping worker"
