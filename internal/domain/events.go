package domain

// Event type constants used for event bus subscriptions, the change feed
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "claim.created")
const (
	// EventTypeClaimCreated is published when a respawn is claimed
	EventTypeClaimCreated = "claim.created"

	// EventTypeClaimReleased is published when an owner releases a claim
	EventTypeClaimReleased = "claim.released"

	// EventTypeClaimExpired is published when housekeeping deactivates an overdue claim
	EventTypeClaimExpired = "claim.expired"

	// EventTypeQueueJoined is published when a user joins a respawn queue
	EventTypeQueueJoined = "queue.joined"

	// EventTypeQueueLeft is published when a queue entry is removed
	EventTypeQueueLeft = "queue.left"

	// EventTypePriorityGranted is published when a queued user receives priority
	EventTypePriorityGranted = "queue.priority_granted"

	// EventTypePriorityLapsed is published when a priority window runs out unused
	EventTypePriorityLapsed = "queue.priority_lapsed"

	// EventTypeNotificationCreated is published for every stored notification
	EventTypeNotificationCreated = "notification.created"

	// EventTypeNotificationRead is published when notifications are marked read
	EventTypeNotificationRead = "notification.read"

	// EventTypeFavoriteAdded is published when a user favorites a respawn
	EventTypeFavoriteAdded = "favorite.added"

	// EventTypeFavoriteRemoved is published when a user removes a favorite
	EventTypeFavoriteRemoved = "favorite.removed"

	// EventTypeTicketCreated is published when a support ticket is opened
	EventTypeTicketCreated = "ticket.created"

	// EventTypeTicketUpdated is published when a support ticket changes status
	EventTypeTicketUpdated = "ticket.updated"

	// EventTypeHuntedOnline is published when a hunted character logs in
	EventTypeHuntedOnline = "hunted.online"

	// EventTypeSystemAlert is published for guild-wide announcements
	EventTypeSystemAlert = "system.alert"

	// EventTypeHousekeepingCompleted is published after a housekeeping run
	EventTypeHousekeepingCompleted = "housekeeping.completed"
)
