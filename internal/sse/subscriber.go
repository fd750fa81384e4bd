package sse

import (
	"context"

	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// route maps a bus event type onto the row change it represents
type route struct {
	table   string
	op      string
	private bool
}

// routes covers every bus event that changes a mirrored row. Lapsed priorities
// delete the entry; granted priorities update it in place.
var routes = map[event.Type]route{
	event.ClaimCreated:          {TableClaims, OpInsert, false},
	event.ClaimReleased:         {TableClaims, OpUpdate, false},
	event.ClaimExpired:          {TableClaims, OpUpdate, false},
	event.QueueJoined:           {TableQueueEntries, OpInsert, false},
	event.QueueLeft:             {TableQueueEntries, OpDelete, false},
	event.PriorityGranted:       {TableQueueEntries, OpUpdate, false},
	event.PriorityLapsed:        {TableQueueEntries, OpDelete, false},
	event.FavoriteAdded:         {TableFavorites, OpInsert, true},
	event.FavoriteRemoved:       {TableFavorites, OpDelete, true},
	event.NotificationCreated:   {TableNotifications, OpInsert, true},
	event.NotificationRead:      {TableNotifications, OpUpdate, true},
	event.HousekeepingCompleted: {TableSystem, OpUpdate, false},
}

// Subscriber bridges the internal event bus to the hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new bridge
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe registers the bridge for every routed event type
func (s *Subscriber) Subscribe() {
	types := make([]event.Type, 0, len(routes))
	for t := range routes {
		types = append(types, t)
	}
	event.SubscribeAll(s.bus, s.handle, types...)
	logger.FromContext(context.Background()).Info(LogMsgBridgeRegistered, "types", len(types))
}

func (s *Subscriber) handle(ctx context.Context, evt event.Event) error {
	change, ok := ToChange(evt)
	if !ok {
		logger.FromContext(ctx).Debug(LogMsgUnmappedEvent, "type", evt.Type)
		return nil
	}
	s.hub.Broadcast(change)
	logger.FromContext(ctx).Debug(LogMsgEventBroadcast, "type", change.Type, "table", change.Table, "op", change.Op)
	return nil
}

// ToChange converts a bus event into a feed event
func ToChange(evt event.Event) (Event, bool) {
	r, ok := routes[evt.Type]
	if !ok {
		return Event{}, false
	}
	change := Event{
		Type:    string(evt.Type),
		Table:   r.table,
		Op:      r.op,
		Payload: evt.Payload,
		Private: r.private,
	}
	if userID, ok := evt.GetMetadataValue(event.MetadataKeyUserID).(string); ok {
		change.UserID = userID
	}
	if respawnID, ok := evt.GetMetadataValue(event.MetadataKeyRespawnID).(int64); ok {
		change.RespawnID = respawnID
	}
	// Private rows without an owner would reach nobody
	if change.Private && change.UserID == "" {
		return Event{}, false
	}
	return change, true
}
