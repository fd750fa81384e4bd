package event

import "time"

// EventSchemaVersion is stamped on every event built by the constructors
const EventSchemaVersion = "1.0"

// Retry queue settings
const (
	RetryQueueBufferSize = 1000

	// MaxRetryDelay caps the exponential backoff between attempts
	MaxRetryDelay = time.Minute
)

// DeadLetterFilePermissions is the mode of the JSONL dead-letter file
const DeadLetterFilePermissions = 0644

// Log messages
const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetryFailed      = "Event retry failed, scheduling next attempt"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgEventDroppedShutdown  = "Event dropped during shutdown"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"
)

// LogMsgHandlerErrorFormat joins the handler failures of one publish
const LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"

// CalculateRetryDelay is baseDelay doubled per attempt after the first,
// capped at MaxRetryDelay
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	return min(delay, MaxRetryDelay)
}
