package domain

import "time"

// Claim end reasons
const (
	ClaimEndReasonReleased = "released"
	ClaimEndReasonExpired  = "expired"
)

// Claim is a time-limited exclusive hold on a respawn.
// Claims are never deleted; inactive rows are history.
type Claim struct {
	ID                 int64      `json:"id" db:"claim_id"`
	RespawnID          int64      `json:"respawn_id" db:"respawn_id"`
	UserID             string     `json:"user_id" db:"user_id"`
	CharacterID        int64      `json:"character_id" db:"character_id"`
	CharacterName      string     `json:"character_name" db:"character_name"`
	ClaimedAt          time.Time  `json:"claimed_at" db:"claimed_at"`
	ExpiresAt          time.Time  `json:"expires_at" db:"expires_at"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	ReleasedAt         *time.Time `json:"released_at,omitempty" db:"released_at"`
	EndReason          string     `json:"end_reason,omitempty" db:"end_reason"`
	ExpiringNotifiedAt *time.Time `json:"-" db:"expiring_notified_at"`
}

// IsLive reports whether the claim is active and not yet past its expiry
func (c Claim) IsLive(now time.Time) bool {
	return c.IsActive && c.ExpiresAt.After(now)
}

// IsOverdue reports whether the claim is still flagged active but past its expiry
func (c Claim) IsOverdue(now time.Time) bool {
	return c.IsActive && !c.ExpiresAt.After(now)
}

// Remaining returns the time left before expiry, zero when already past
func (c Claim) Remaining(now time.Time) time.Duration {
	if !c.ExpiresAt.After(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
