package repository

import (
	"context"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Coordination defines data access for claims and queue entries.
// Reads on the interface itself are unlocked snapshots; all writes go through
// a CoordinationTx holding the respawn lock.
type Coordination interface {
	BeginCoordinationTx(ctx context.Context) (CoordinationTx, error)

	GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error)
	ListActiveClaims(ctx context.Context) ([]domain.Claim, error)
	ListUserClaims(ctx context.Context, userID string) ([]domain.Claim, error)
	ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error)
	ListAllQueueEntries(ctx context.Context) ([]domain.QueueEntry, error)
	ListUserQueueEntries(ctx context.Context, userID string) ([]domain.QueueEntry, error)

	// Housekeeping scans
	ListOverdueClaims(ctx context.Context, now time.Time) ([]domain.Claim, error)
	ListLapsedPriorities(ctx context.Context, now time.Time) ([]domain.QueueEntry, error)
	// ListStalledRespawns returns respawns with waiting entries but neither a
	// live claim nor a live priority holder
	ListStalledRespawns(ctx context.Context, now time.Time) ([]int64, error)
	ListClaimsNearExpiry(ctx context.Context, now, deadline time.Time) ([]domain.Claim, error)
}

// CoordinationTx extends Tx with claim and queue mutations
type CoordinationTx interface {
	Tx // Commit, Rollback

	// LockRespawn serializes this transaction against every other transaction on the respawn
	LockRespawn(ctx context.Context, respawnID int64) error

	GetRespawn(ctx context.Context, respawnID int64) (*domain.Respawn, error)
	GetMember(ctx context.Context, userID string) (*domain.Member, error)
	GetCharacter(ctx context.Context, characterID int64) (*domain.Character, error)

	GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error)
	GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error)
	InsertClaim(ctx context.Context, claim domain.Claim) (*domain.Claim, error)
	DeactivateClaim(ctx context.Context, claimID int64, at time.Time, reason string) error
	MarkExpiringNotified(ctx context.Context, claimID int64, at time.Time) error

	ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error)
	InsertQueueEntry(ctx context.Context, entry domain.QueueEntry) (*domain.QueueEntry, error)
	DeleteQueueEntry(ctx context.Context, entryID int64) error
	GrantPriority(ctx context.Context, entryID int64, givenAt, expiresAt time.Time) error

	InsertNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
}
