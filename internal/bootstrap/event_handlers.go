package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/metrics"
	"github.com/osse101/RespawnQueue_Go/internal/notification"
	"github.com/osse101/RespawnQueue_Go/internal/sse"
)

// EventHandlerDependencies holds what the bus subscribers need
type EventHandlerDependencies struct {
	EventBus      event.Bus
	Hub           *sse.Hub
	Notifications notification.Service
	Audience      notification.AudienceProvider
	Registerer    prometheus.Registerer
}

// RegisterEventHandlers subscribes the change feed bridge, the metrics
// collector and the notification dispatcher, and exposes the feed client gauge.
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe()
	slog.Info(LogMsgFeedBridgeRegistered)

	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	if deps.Registerer != nil {
		if err := metrics.RegisterFeedClients(deps.Registerer, deps.Hub.ClientCount); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedRegisterFeedGauge, err)
		}
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	notification.NewDispatcher(deps.Notifications, deps.Audience).Register(deps.EventBus)
	slog.Info(LogMsgDispatcherRegistered)

	return nil
}
