package domain

import (
	"sort"
	"time"
)

// QueueEntry is a user waiting for a respawn
type QueueEntry struct {
	ID                int64      `json:"id" db:"queue_entry_id"`
	RespawnID         int64      `json:"respawn_id" db:"respawn_id"`
	UserID            string     `json:"user_id" db:"user_id"`
	CharacterID       int64      `json:"character_id" db:"character_id"`
	CharacterName     string     `json:"character_name" db:"character_name"`
	JoinedAt          time.Time  `json:"joined_at" db:"joined_at"`
	PriorityGivenAt   *time.Time `json:"priority_given_at,omitempty" db:"priority_given_at"`
	PriorityExpiresAt *time.Time `json:"priority_expires_at,omitempty" db:"priority_expires_at"`
}

// HasPriority reports whether the entry holds an unexpired priority grant
func (e QueueEntry) HasPriority(now time.Time) bool {
	return e.PriorityExpiresAt != nil && e.PriorityExpiresAt.After(now)
}

// PriorityLapsed reports whether the entry was granted priority that has since run out
func (e QueueEntry) PriorityLapsed(now time.Time) bool {
	return e.PriorityExpiresAt != nil && !e.PriorityExpiresAt.After(now)
}

// OrderQueue sorts entries into wait order: joined_at ascending, then insertion id
func OrderQueue(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].JoinedAt.Equal(entries[j].JoinedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].JoinedAt.Before(entries[j].JoinedAt)
	})
}

// PositionOf returns the 1-based wait position of a user, or 0 if not queued.
// entries must already be in wait order.
func PositionOf(entries []QueueEntry, userID string) int {
	for i, e := range entries {
		if e.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// PriorityHolder returns the entry currently holding priority, if any
func PriorityHolder(entries []QueueEntry, now time.Time) *QueueEntry {
	for i := range entries {
		if entries[i].HasPriority(now) {
			return &entries[i]
		}
	}
	return nil
}

// NextInLine returns the first entry in wait order that has never been granted priority.
// entries must already be in wait order.
func NextInLine(entries []QueueEntry) *QueueEntry {
	for i := range entries {
		if entries[i].PriorityExpiresAt == nil {
			return &entries[i]
		}
	}
	return nil
}
