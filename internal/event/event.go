package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Metadata keys
const (
	MetadataKeyUserID    = "user_id"
	MetadataKeyRespawnID = "respawn_id"
	MetadataKeySource    = "source"
)

// Event sources
const (
	SourceUser         = "user"
	SourceHousekeeping = "housekeeping"
	SourceAdmin        = "admin"
)

// Common event types
const (
	ClaimCreated          Type = domain.EventTypeClaimCreated
	ClaimReleased         Type = domain.EventTypeClaimReleased
	ClaimExpired          Type = domain.EventTypeClaimExpired
	QueueJoined           Type = domain.EventTypeQueueJoined
	QueueLeft             Type = domain.EventTypeQueueLeft
	PriorityGranted       Type = domain.EventTypePriorityGranted
	PriorityLapsed        Type = domain.EventTypePriorityLapsed
	NotificationCreated   Type = domain.EventTypeNotificationCreated
	NotificationRead      Type = domain.EventTypeNotificationRead
	FavoriteAdded         Type = domain.EventTypeFavoriteAdded
	FavoriteRemoved       Type = domain.EventTypeFavoriteRemoved
	TicketCreated         Type = domain.EventTypeTicketCreated
	TicketUpdated         Type = domain.EventTypeTicketUpdated
	HuntedOnline          Type = domain.EventTypeHuntedOnline
	SystemAlert           Type = domain.EventTypeSystemAlert
	HousekeepingCompleted Type = domain.EventTypeHousekeepingCompleted
)

// Typed event payloads for type safety

// ClaimPayloadV1 is the typed payload for claim lifecycle events
type ClaimPayloadV1 struct {
	Claim       domain.Claim `json:"claim"`
	RespawnCode string       `json:"respawn_code"`
}

// QueuePayloadV1 is the typed payload for queue events
type QueuePayloadV1 struct {
	Entry       domain.QueueEntry `json:"entry"`
	RespawnCode string            `json:"respawn_code"`
	Position    int               `json:"position,omitempty"`
}

// NotificationPayloadV1 is the typed payload for notification events
type NotificationPayloadV1 struct {
	Notification domain.Notification `json:"notification"`
}

// NotificationReadPayloadV1 is the typed payload for read-flag changes
type NotificationReadPayloadV1 struct {
	UserID         string `json:"user_id"`
	NotificationID int64  `json:"notification_id,omitempty"` // zero means all
	Count          int64  `json:"count"`
}

// FavoritePayloadV1 is the typed payload for favorite events
type FavoritePayloadV1 struct {
	Favorite domain.Favorite `json:"favorite"`
}

// TicketPayloadV1 is the typed payload for support ticket events
type TicketPayloadV1 struct {
	Ticket domain.Ticket `json:"ticket"`
}

// HuntedOnlinePayloadV1 is the typed payload for hunted sightings
type HuntedOnlinePayloadV1 struct {
	Sighting domain.HuntedSighting `json:"sighting"`
}

// SystemAlertPayloadV1 is the typed payload for guild-wide announcements
type SystemAlertPayloadV1 struct {
	Alert domain.SystemAlert `json:"alert"`
}

// HousekeepingCompletedPayloadV1 summarises one housekeeping run
type HousekeepingCompletedPayloadV1 struct {
	ExpiredClaims       int       `json:"expired_claims"`
	LapsedPriorities    int       `json:"lapsed_priorities"`
	PrioritiesGranted   int       `json:"priorities_granted"`
	ExpiringWarnings    int       `json:"expiring_warnings"`
	PurgedNotifications int64     `json:"purged_notifications"`
	RanAt               time.Time `json:"ran_at"`
}

// Type-safe event constructors

func userMetadata(userID string, respawnID int64, source string) map[string]interface{} {
	return map[string]interface{}{
		MetadataKeyUserID:    userID,
		MetadataKeyRespawnID: respawnID,
		MetadataKeySource:    source,
	}
}

// NewClaimEvent creates a claim lifecycle event (created, released or expired)
func NewClaimEvent(eventType Type, claim domain.Claim, respawnCode, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: ClaimPayloadV1{
			Claim:       claim,
			RespawnCode: respawnCode,
		},
		Metadata: userMetadata(claim.UserID, claim.RespawnID, source),
	}
}

// NewQueueEvent creates a queue event (joined, left, priority granted or lapsed)
func NewQueueEvent(eventType Type, entry domain.QueueEntry, respawnCode string, position int, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: QueuePayloadV1{
			Entry:       entry,
			RespawnCode: respawnCode,
			Position:    position,
		},
		Metadata: userMetadata(entry.UserID, entry.RespawnID, source),
	}
}

// NewNotificationCreatedEvent creates an event for a stored notification
func NewNotificationCreatedEvent(n domain.Notification) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     NotificationCreated,
		Payload:  NotificationPayloadV1{Notification: n},
		Metadata: map[string]interface{}{MetadataKeyUserID: n.UserID},
	}
}

// NewNotificationReadEvent creates an event for read-flag changes
func NewNotificationReadEvent(userID string, notificationID, count int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    NotificationRead,
		Payload: NotificationReadPayloadV1{
			UserID:         userID,
			NotificationID: notificationID,
			Count:          count,
		},
		Metadata: map[string]interface{}{MetadataKeyUserID: userID},
	}
}

// NewFavoriteEvent creates a favorite added or removed event
func NewFavoriteEvent(eventType Type, fav domain.Favorite) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     eventType,
		Payload:  FavoritePayloadV1{Favorite: fav},
		Metadata: userMetadata(fav.UserID, fav.RespawnID, SourceUser),
	}
}

// NewTicketEvent creates a ticket created or updated event
func NewTicketEvent(eventType Type, ticket domain.Ticket) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     eventType,
		Payload:  TicketPayloadV1{Ticket: ticket},
		Metadata: map[string]interface{}{MetadataKeySource: SourceAdmin},
	}
}

// NewHuntedOnlineEvent creates a hunted sighting event
func NewHuntedOnlineEvent(sighting domain.HuntedSighting) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     HuntedOnline,
		Payload:  HuntedOnlinePayloadV1{Sighting: sighting},
		Metadata: map[string]interface{}{MetadataKeySource: SourceAdmin},
	}
}

// NewSystemAlertEvent creates a guild-wide announcement event
func NewSystemAlertEvent(alert domain.SystemAlert) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     SystemAlert,
		Payload:  SystemAlertPayloadV1{Alert: alert},
		Metadata: map[string]interface{}{MetadataKeySource: SourceAdmin},
	}
}

// NewHousekeepingCompletedEvent creates the summary event for a housekeeping run
func NewHousekeepingCompletedEvent(payload HousekeepingCompletedPayloadV1) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     HousekeepingCompleted,
		Payload:  payload,
		Metadata: map[string]interface{}{MetadataKeySource: SourceHousekeeping},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously on the publisher's goroutine
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll subscribes one handler to several event types
func SubscribeAll(bus Bus, handler Handler, types ...Type) {
	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}
