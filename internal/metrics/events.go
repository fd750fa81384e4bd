package metrics

import (
	"context"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Transition label values
const (
	transitionCreated  = "created"
	transitionReleased = "released"
	transitionExpired  = "expired"
	transitionJoined   = "joined"
	transitionLeft     = "left"
	transitionGranted  = "priority_granted"
	transitionLapsed   = "priority_lapsed"
)

var claimTransitions = map[event.Type]string{
	event.ClaimCreated:  transitionCreated,
	event.ClaimReleased: transitionReleased,
	event.ClaimExpired:  transitionExpired,
}

var queueTransitions = map[event.Type]string{
	event.QueueJoined:     transitionJoined,
	event.QueueLeft:       transitionLeft,
	event.PriorityGranted: transitionGranted,
	event.PriorityLapsed:  transitionLapsed,
}

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every coordination event
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeAll(bus, e.HandleEvent,
		event.ClaimCreated,
		event.ClaimReleased,
		event.ClaimExpired,
		event.QueueJoined,
		event.QueueLeft,
		event.PriorityGranted,
		event.PriorityLapsed,
		event.NotificationCreated,
		event.NotificationRead,
		event.FavoriteAdded,
		event.FavoriteRemoved,
		event.TicketCreated,
		event.TicketUpdated,
		event.HuntedOnline,
		event.SystemAlert,
		event.HousekeepingCompleted,
	)
}

// HandleEvent processes events and updates metrics. It never fails the publisher.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()
	source, _ := evt.GetMetadataValue(event.MetadataKeySource).(string)

	switch {
	case claimTransitions[evt.Type] != "":
		ClaimTransitions.WithLabelValues(claimTransitions[evt.Type], source).Inc()
		if evt.Type == event.ClaimCreated {
			break
		}
		p, err := event.DecodePayload[event.ClaimPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		observeHold(p.Claim)

	case queueTransitions[evt.Type] != "":
		QueueTransitions.WithLabelValues(queueTransitions[evt.Type], source).Inc()

	case evt.Type == event.NotificationCreated:
		p, err := event.DecodePayload[event.NotificationPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		NotificationsCreated.WithLabelValues(string(p.Notification.Type)).Inc()

	case evt.Type == event.HousekeepingCompleted:
		p, err := event.DecodePayload[event.HousekeepingCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		HousekeepingRuns.Inc()
		HousekeepingChanges.WithLabelValues(KindExpiredClaims).Add(float64(p.ExpiredClaims))
		HousekeepingChanges.WithLabelValues(KindLapsedPriorities).Add(float64(p.LapsedPriorities))
		HousekeepingChanges.WithLabelValues(KindPrioritiesGranted).Add(float64(p.PrioritiesGranted))
		HousekeepingChanges.WithLabelValues(KindExpiringWarnings).Add(float64(p.ExpiringWarnings))
		HousekeepingChanges.WithLabelValues(KindPurgedNotifications).Add(float64(p.PurgedNotifications))
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func observeHold(c domain.Claim) {
	end := c.ExpiresAt
	if c.ReleasedAt != nil {
		end = *c.ReleasedAt
	}
	if held := end.Sub(c.ClaimedAt); held > 0 {
		reason := c.EndReason
		if reason == "" {
			reason = domain.ClaimEndReasonReleased
		}
		ClaimHoldDuration.WithLabelValues(reason).Observe(held.Seconds())
	}
}
