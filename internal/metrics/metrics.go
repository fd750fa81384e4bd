package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Coordination Metrics
var (
	ClaimTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimTransitions,
			Help: HelpTextClaimTransitions,
		},
		[]string{LabelTransition, LabelSource},
	)

	ClaimHoldDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameClaimHoldDuration,
			Help:    HelpTextClaimHoldDuration,
			Buckets: ClaimHoldBuckets,
		},
		[]string{LabelReason},
	)

	QueueTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQueueTransitions,
			Help: HelpTextQueueTransitions,
		},
		[]string{LabelTransition, LabelSource},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotificationsCreated,
			Help: HelpTextNotificationsCreated,
		},
		[]string{LabelType},
	)

	HousekeepingRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameHousekeepingRuns,
			Help: HelpTextHousekeepingRuns,
		},
	)

	HousekeepingChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHousekeepingChanges,
			Help: HelpTextHousekeepingChanges,
		},
		[]string{LabelKind},
	)
)

// RegisterFeedClients exposes a live count of change feed clients
func RegisterFeedClients(reg prometheus.Registerer, count func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: MetricNameFeedClients,
			Help: HelpTextFeedClients,
		},
		func() float64 { return float64(count()) },
	))
}
