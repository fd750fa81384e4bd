package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Coordination metric names
const (
	MetricNameClaimTransitions     = "respawn_claim_transitions_total"
	MetricNameClaimHoldDuration    = "respawn_claim_hold_duration_seconds"
	MetricNameQueueTransitions     = "respawn_queue_transitions_total"
	MetricNameNotificationsCreated = "notifications_created_total"
	MetricNameHousekeepingRuns     = "housekeeping_runs_total"
	MetricNameHousekeepingChanges  = "housekeeping_changes_total"
	MetricNameFeedClients          = "change_feed_clients"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Coordination metric help text
const (
	HelpTextClaimTransitions     = "Claims created, released and expired"
	HelpTextClaimHoldDuration    = "Time between claiming a respawn and the claim ending"
	HelpTextQueueTransitions     = "Queue joins, leaves, priority grants and lapses"
	HelpTextNotificationsCreated = "Notifications stored, by type"
	HelpTextHousekeepingRuns     = "Completed housekeeping runs"
	HelpTextHousekeepingChanges  = "Rows changed by housekeeping, by kind"
	HelpTextFeedClients          = "Connected change feed clients"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelType       = "type"
	LabelTransition = "transition"
	LabelReason     = "reason"
	LabelSource     = "source"
	LabelKind       = "kind"
)

// Housekeeping change kinds
const (
	KindExpiredClaims       = "expired_claims"
	KindLapsedPriorities    = "lapsed_priorities"
	KindPrioritiesGranted   = "priorities_granted"
	KindExpiringWarnings    = "expiring_warnings"
	KindPurgedNotifications = "purged_notifications"
)

// unmatchedRoute labels requests that hit no chi route
const unmatchedRoute = "unmatched"

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ClaimHoldBuckets spans five minutes to four hours
var ClaimHoldBuckets = []float64{300, 900, 1800, 3600, 5400, 7200, 9000, 10800, 14400}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgPayloadDecodeFailed = "Event payload could not be decoded for metrics"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
