package sse

// Table names mirrored by the change feed
const (
	TableClaims        = "claims"
	TableQueueEntries  = "queue_entries"
	TableFavorites     = "favorites"
	TableNotifications = "notifications"
	TableSystem        = "system"
)

// Row operations
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Event is one change delivered to feed clients
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Table     string      `json:"table"`
	Op        string      `json:"op"`
	UserID    string      `json:"user_id,omitempty"`
	RespawnID int64       `json:"respawn_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`

	// Private events reach only the clients of UserID
	Private bool `json:"-"`
}

// ClientOptions scopes what a client receives
type ClientOptions struct {
	UserID string
	// Tables and Types restrict delivery; empty means everything
	Tables []string
	Types  []string
	// OwnOnly drops public rows that belong to other users
	OwnOnly bool
}
