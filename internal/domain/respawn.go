package domain

import "time"

// Respawn is a claimable hunting location
type Respawn struct {
	ID        int64     `json:"id" db:"respawn_id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city" db:"city"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RespawnState is the derived coordination state of a respawn
type RespawnState string

const (
	// RespawnStateFree means nobody holds the respawn and nobody holds priority
	RespawnStateFree RespawnState = "free"
	// RespawnStateClaimed means an active claim exists
	RespawnStateClaimed RespawnState = "claimed"
	// RespawnStateReserved means the respawn is free but a queued user holds priority
	RespawnStateReserved RespawnState = "reserved"
)

// RespawnOverview is a respawn joined with its current claim and queue
type RespawnOverview struct {
	Respawn
	State          RespawnState `json:"state"`
	ActiveClaim    *Claim       `json:"active_claim,omitempty"`
	PriorityHolder *QueueEntry  `json:"priority_holder,omitempty"`
	QueueLength    int          `json:"queue_length"`
}

// DeriveState computes the respawn state from its active claim and queue
func DeriveState(active *Claim, queue []QueueEntry, now time.Time) RespawnState {
	if active != nil && active.IsLive(now) {
		return RespawnStateClaimed
	}
	if PriorityHolder(queue, now) != nil {
		return RespawnStateReserved
	}
	return RespawnStateFree
}

// Favorite marks a respawn a user wants to follow
type Favorite struct {
	UserID    string    `json:"user_id" db:"user_id"`
	RespawnID int64     `json:"respawn_id" db:"respawn_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
