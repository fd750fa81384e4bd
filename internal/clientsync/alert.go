package clientsync

import (
	"context"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// Priority decides how loudly an alert is presented
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
)

// PriorityFor maps a notification type to its alert priority
func PriorityFor(t domain.NotificationType) Priority {
	switch t {
	case domain.NotificationClaimReady:
		return PriorityHigh
	case domain.NotificationClaimExpiring:
		return PriorityMedium
	default:
		return PriorityNormal
	}
}

// Alert is a notification prepared for an alert surface
type Alert struct {
	NotificationID int64
	Type           domain.NotificationType
	Title          string
	Message        string
	RespawnID      *int64
	Priority       Priority

	// AutoDismiss of zero keeps the alert until acknowledged
	AutoDismiss   time.Duration
	Sound         string
	GrabAttention bool

	// Urgent alerts count down to Deadline
	Urgent    bool
	Deadline  time.Time
	Countdown time.Duration
}

// NewAlert builds the standard alert for a notification
func NewAlert(n domain.Notification) Alert {
	a := Alert{
		NotificationID: n.ID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RespawnID:      n.RespawnID,
		Priority:       PriorityFor(n.Type),
	}
	switch a.Priority {
	case PriorityHigh:
		a.Sound = SoundUrgent
		a.GrabAttention = true
	case PriorityMedium:
		a.AutoDismiss = AutoDismissMedium
		a.Sound = SoundChime
	default:
		a.AutoDismiss = AutoDismissNormal
		a.Sound = SoundSoft
	}
	return a
}

// urgentAlert is the countdown raised next to a claim_ready alert
func urgentAlert(base Alert, deadline, now time.Time) Alert {
	a := base
	a.Urgent = true
	a.Deadline = deadline
	a.Countdown = deadline.Sub(now)
	a.AutoDismiss = 0
	return a
}

// Sink is an alert surface
type Sink interface {
	Deliver(ctx context.Context, alert Alert) error
}

// Router turns notifications into alerts exactly once per dedup window
type Router struct {
	dedup   *Dedup
	sinks   []Sink
	visible func() bool
	now     func() time.Time
}

// NewRouter creates a router. visible reports whether the user is looking at
// the app; nil means always visible.
func NewRouter(dedup *Dedup, visible func() bool, sinks ...Sink) *Router {
	if visible == nil {
		visible = func() bool { return true }
	}
	return &Router{
		dedup:   dedup,
		sinks:   sinks,
		visible: visible,
		now:     time.Now,
	}
}

// Handle alerts n unless its id was already handled. It is safe to call from
// the feed and the poller concurrently; it reports whether alerts were raised.
func (r *Router) Handle(ctx context.Context, n domain.Notification) bool {
	log := logger.FromContext(ctx)
	if !r.dedup.FirstSeen(n.ID) {
		log.Debug(LogMsgDuplicateSkipped, "notification_id", n.ID)
		return false
	}

	alerts := []Alert{NewAlert(n)}
	now := r.now()
	if n.Type == domain.NotificationClaimReady && n.ExpiresAt != nil && n.ExpiresAt.After(now) && r.visible() {
		alerts = append(alerts, urgentAlert(alerts[0], *n.ExpiresAt, now))
	}

	for _, a := range alerts {
		for _, sink := range r.sinks {
			if err := sink.Deliver(ctx, a); err != nil {
				log.Warn(LogMsgAlertSinkFailed, "notification_id", n.ID, "error", err)
			}
		}
	}
	return true
}
