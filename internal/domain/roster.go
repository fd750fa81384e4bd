package domain

import "time"

// RoleTier decides how long a member's claims last
type RoleTier string

const (
	RoleTierGuild  RoleTier = "guild"
	RoleTierNeutro RoleTier = "neutro"
)

// Valid reports whether the tier is known
func (t RoleTier) Valid() bool {
	return t == RoleTierGuild || t == RoleTierNeutro
}

// Member is a registered guild member
type Member struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	RoleTier  RoleTier  `json:"role_tier" db:"role_tier"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Character is an in-game character owned by a member
type Character struct {
	ID        int64     `json:"id" db:"character_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	World     string    `json:"world" db:"world"`
	Vocation  string    `json:"vocation,omitempty" db:"vocation"`
	Level     int       `json:"level" db:"level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
