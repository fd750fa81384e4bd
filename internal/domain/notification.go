package domain

import (
	"fmt"
	"time"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationClaimReady    NotificationType = "claim_ready"
	NotificationClaimExpiring NotificationType = "claim_expiring"
	NotificationQueueUpdate   NotificationType = "queue_update"
	NotificationSystemAlert   NotificationType = "system_alert"
	NotificationTicketUpdate  NotificationType = "ticket_update"
	NotificationNewTicket     NotificationType = "new_ticket"
	NotificationHuntedOnline  NotificationType = "hunted_online"
)

// Notification is a message addressed to a single user
type Notification struct {
	ID        int64            `json:"id" db:"notification_id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	RespawnID *int64           `json:"respawn_id,omitempty" db:"respawn_id"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty" db:"expires_at"`
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	UserID     string
	Since      *time.Time
	UnreadOnly bool
	Limit      int
}

// Notification title and message templates
const (
	TitleClaimReady      = "Your turn!"
	MsgFmtClaimReady     = "Respawn %s (%s) is ready for %s. Claim it within %d minutes."
	TitleClaimExpiring   = "Claim expiring"
	MsgFmtClaimExpiring  = "Your claim on %s (%s) expires in %d minutes."
	TitlePriorityLapsed  = "Priority expired"
	MsgFmtPriorityLapsed = "Your priority on %s (%s) expired and passed to the next in line."
	TitleNewTicket       = "New ticket"
	TitleTicketUpdate    = "Ticket updated"
	TitleHuntedOnline    = "Hunted online"
	MsgFmtHuntedOnline   = "%s is online on %s."
)

// NewClaimReadyNotification builds the notification sent on a priority grant
func NewClaimReadyNotification(entry QueueEntry, respawn Respawn, window time.Duration) Notification {
	return Notification{
		UserID:    entry.UserID,
		Title:     TitleClaimReady,
		Message:   fmt.Sprintf(MsgFmtClaimReady, respawn.Code, respawn.Name, entry.CharacterName, int(window.Minutes())),
		Type:      NotificationClaimReady,
		RespawnID: &respawn.ID,
		ExpiresAt: entry.PriorityExpiresAt,
	}
}

// NewClaimExpiringNotification builds the warning sent before a claim runs out
func NewClaimExpiringNotification(claim Claim, respawn Respawn, now time.Time) Notification {
	minutes := int(claim.Remaining(now).Round(time.Minute).Minutes())
	expiresAt := claim.ExpiresAt
	return Notification{
		UserID:    claim.UserID,
		Title:     TitleClaimExpiring,
		Message:   fmt.Sprintf(MsgFmtClaimExpiring, respawn.Code, respawn.Name, minutes),
		Type:      NotificationClaimExpiring,
		RespawnID: &respawn.ID,
		ExpiresAt: &expiresAt,
	}
}

// NewPriorityLapsedNotification builds the notification sent when an unused priority runs out
func NewPriorityLapsedNotification(entry QueueEntry, respawn Respawn) Notification {
	return Notification{
		UserID:    entry.UserID,
		Title:     TitlePriorityLapsed,
		Message:   fmt.Sprintf(MsgFmtPriorityLapsed, respawn.Code, respawn.Name),
		Type:      NotificationQueueUpdate,
		RespawnID: &respawn.ID,
	}
}
