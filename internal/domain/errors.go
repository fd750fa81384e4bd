package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Roster errors
	ErrMsgUserNotFound        = "user not found"
	ErrMsgCharacterNotFound   = "character not found"
	ErrMsgCharacterNotOwned   = "character does not belong to you"
	ErrMsgMemberAlreadyExists = "member already exists"
	ErrMsgInvalidRoleTier     = "invalid role tier"

	// Respawn errors
	ErrMsgRespawnNotFound       = "respawn not found"
	ErrMsgRespawnCodeTaken      = "respawn code already exists"
	ErrMsgRespawnHasActiveClaim = "respawn has an active claim"

	// Claim errors
	ErrMsgRespawnAlreadyClaimed = "respawn already claimed"
	ErrMsgPriorityReserved      = "respawn is reserved for the next in queue"
	ErrMsgClaimNotFound         = "claim not found"
	ErrMsgClaimNotActive        = "claim is not active"
	ErrMsgNotClaimOwner         = "not your claim"

	// Queue errors
	ErrMsgAlreadyInQueue   = "already in queue"
	ErrMsgNotInQueue       = "not in queue"
	ErrMsgAlreadyHoldClaim = "you already hold this respawn"

	// Notification errors
	ErrMsgNotificationNotFound = "notification not found"

	// Favorite errors
	ErrMsgFavoriteNotFound = "favorite not found"

	// Auth errors
	ErrMsgUnauthenticated = "authentication required"
	ErrMsgForbidden       = "admin privileges required"

	// Database/System errors
	ErrMsgConnectionTimeout = "connection timeout"
	ErrMsgDatabaseError     = "database error"
	ErrMsgDeadlockDetected  = "deadlock detected"
	ErrMsgTxClosed          = "tx is closed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Roster errors
	ErrUserNotFound        = errors.New(ErrMsgUserNotFound)
	ErrCharacterNotFound   = errors.New(ErrMsgCharacterNotFound)
	ErrCharacterNotOwned   = errors.New(ErrMsgCharacterNotOwned)
	ErrMemberAlreadyExists = errors.New(ErrMsgMemberAlreadyExists)
	ErrInvalidRoleTier     = errors.New(ErrMsgInvalidRoleTier)

	// Respawn errors
	ErrRespawnNotFound       = errors.New(ErrMsgRespawnNotFound)
	ErrRespawnCodeTaken      = errors.New(ErrMsgRespawnCodeTaken)
	ErrRespawnHasActiveClaim = errors.New(ErrMsgRespawnHasActiveClaim)

	// Claim errors
	ErrRespawnAlreadyClaimed = errors.New(ErrMsgRespawnAlreadyClaimed)
	ErrPriorityReserved      = errors.New(ErrMsgPriorityReserved)
	ErrClaimNotFound         = errors.New(ErrMsgClaimNotFound)
	ErrClaimNotActive        = errors.New(ErrMsgClaimNotActive)
	ErrNotClaimOwner         = errors.New(ErrMsgNotClaimOwner)

	// Queue errors
	ErrAlreadyInQueue   = errors.New(ErrMsgAlreadyInQueue)
	ErrNotInQueue       = errors.New(ErrMsgNotInQueue)
	ErrAlreadyHoldClaim = errors.New(ErrMsgAlreadyHoldClaim)

	// Notification errors
	ErrNotificationNotFound = errors.New(ErrMsgNotificationNotFound)

	// Favorite errors
	ErrFavoriteNotFound = errors.New(ErrMsgFavoriteNotFound)

	// Auth errors
	ErrUnauthenticated = errors.New(ErrMsgUnauthenticated)
	ErrForbidden       = errors.New(ErrMsgForbidden)

	// Database/System errors
	ErrConnectionTimeout = errors.New(ErrMsgConnectionTimeout)
	ErrDatabaseError     = errors.New(ErrMsgDatabaseError)
	ErrDeadlockDetected  = errors.New(ErrMsgDeadlockDetected)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// domainErrors are failures caused by the caller's request rather than the system.
// They are reported as {success:false} results instead of server errors.
var domainErrors = []error{
	ErrUserNotFound,
	ErrCharacterNotFound,
	ErrCharacterNotOwned,
	ErrMemberAlreadyExists,
	ErrInvalidRoleTier,
	ErrRespawnNotFound,
	ErrRespawnCodeTaken,
	ErrRespawnHasActiveClaim,
	ErrRespawnAlreadyClaimed,
	ErrPriorityReserved,
	ErrClaimNotFound,
	ErrClaimNotActive,
	ErrNotClaimOwner,
	ErrAlreadyInQueue,
	ErrNotInQueue,
	ErrAlreadyHoldClaim,
	ErrNotificationNotFound,
	ErrFavoriteNotFound,
	ErrInvalidInput,
}

// IsDomainError reports whether err wraps one of the caller-facing domain errors
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
