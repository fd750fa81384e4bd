package respawn

// Input limits
const (
	MaxCodeLength = 16
	MaxNameLength = 128
	MaxCityLength = 64
)

// Log messages
const (
	LogMsgRespawnCreated  = "Respawn created"
	LogMsgRespawnArchived = "Respawn archived"
	LogMsgPublishFailed   = "Failed to publish favorite event"
)

// Error messages
const (
	ErrMsgCodeRequired   = "code is required"
	ErrMsgNameRequired   = "name is required"
	ErrMsgFieldTooLong   = "%s is too long"
	ErrMsgOverviewFailed = "failed to build respawn overview: %w"
)
