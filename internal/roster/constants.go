package roster

import "time"

// Member cache defaults
const (
	DefaultCacheSize = 512
	DefaultCacheTTL  = 5 * time.Minute

	// CacheSchemaVersion invalidates cached entries when the cached shape changes
	CacheSchemaVersion = "1.0"
)

// Input limits
const (
	MaxUsernameLength      = 64
	MaxCharacterNameLength = 64
	MaxCharacterLevel      = 5000
)

// Log messages
const (
	LogMsgMemberRegistered = "Member registered"
	LogMsgMemberUpdated    = "Member updated"
	LogMsgCharacterAdded   = "Character added"
)

// Error messages
const (
	ErrMsgUsernameRequired      = "username is required"
	ErrMsgUsernameTooLong       = "username is too long"
	ErrMsgCharacterNameRequired = "character name is required"
	ErrMsgCharacterNameTooLong  = "character name is too long"
	ErrMsgWorldRequired         = "world is required"
	ErrMsgLevelOutOfRange       = "level must be between 0 and 5000"
	ErrMsgListMembersFailed     = "failed to list members: %w"
)
