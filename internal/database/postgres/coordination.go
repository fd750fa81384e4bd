package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// CoordinationRepository implements repository.Coordination for PostgreSQL.
// Writes happen inside a transaction serialized per respawn by an advisory lock.
type CoordinationRepository struct {
	db *pgxpool.Pool
}

// NewCoordinationRepository creates a new CoordinationRepository
func NewCoordinationRepository(db *pgxpool.Pool) *CoordinationRepository {
	return &CoordinationRepository{db: db}
}

// BeginCoordinationTx starts a transaction for claim and queue mutations
func (r *CoordinationRepository) BeginCoordinationTx(ctx context.Context) (repository.CoordinationTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTxFailed, mapInfraError(err))
	}
	return &coordinationTx{tx: tx}, nil
}

func (r *CoordinationRepository) GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error) {
	return getActiveClaim(ctx, r.db, respawnID)
}

func (r *CoordinationRepository) ListActiveClaims(ctx context.Context) ([]domain.Claim, error) {
	return listClaims(ctx, r.db, "list active claims", SQLListActiveClaims)
}

func (r *CoordinationRepository) ListUserClaims(ctx context.Context, userID string) ([]domain.Claim, error) {
	return listClaims(ctx, r.db, "list user claims", SQLListUserClaims, userID)
}

func (r *CoordinationRepository) ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error) {
	return listQueue(ctx, r.db, "list queue", SQLListQueue, respawnID)
}

func (r *CoordinationRepository) ListAllQueueEntries(ctx context.Context) ([]domain.QueueEntry, error) {
	return listQueue(ctx, r.db, "list queues", SQLListAllQueueEntries)
}

func (r *CoordinationRepository) ListUserQueueEntries(ctx context.Context, userID string) ([]domain.QueueEntry, error) {
	return listQueue(ctx, r.db, "list user queue entries", SQLListUserQueueEntries, userID)
}

func (r *CoordinationRepository) ListOverdueClaims(ctx context.Context, now time.Time) ([]domain.Claim, error) {
	return listClaims(ctx, r.db, "list overdue claims", SQLListOverdueClaims, now)
}

func (r *CoordinationRepository) ListLapsedPriorities(ctx context.Context, now time.Time) ([]domain.QueueEntry, error) {
	return listQueue(ctx, r.db, "list lapsed priorities", SQLListLapsedPriorities, now)
}

func (r *CoordinationRepository) ListStalledRespawns(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, SQLListStalledRespawns, now)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list stalled respawns", mapInfraError(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "scan stalled respawns", err)
	}
	return ids, nil
}

func (r *CoordinationRepository) ListClaimsNearExpiry(ctx context.Context, now, deadline time.Time) ([]domain.Claim, error) {
	return listClaims(ctx, r.db, "list claims near expiry", SQLListClaimsNearExpiry, now, deadline)
}

// coordinationTx implements repository.CoordinationTx over a pgx transaction
type coordinationTx struct {
	tx pgx.Tx
}

func (t *coordinationTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTxFailed, mapInfraError(err))
	}
	return nil
}

func (t *coordinationTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// LockRespawn blocks until no other transaction holds the respawn.
// The lock is released on commit or rollback.
func (t *coordinationTx) LockRespawn(ctx context.Context, respawnID int64) error {
	key := LockKey(LockNamespaceRespawn, strconv.FormatInt(respawnID, 10))
	if _, err := t.tx.Exec(ctx, SQLAdvisoryLock, key); err != nil {
		return fmt.Errorf(ErrMsgAcquireLockFailed, mapInfraError(err))
	}
	return nil
}

func (t *coordinationTx) GetRespawn(ctx context.Context, respawnID int64) (*domain.Respawn, error) {
	return getOne(ctx, t.tx, scanRespawn, domain.ErrRespawnNotFound, SQLGetRespawn, respawnID)
}

func (t *coordinationTx) GetMember(ctx context.Context, userID string) (*domain.Member, error) {
	return getMember(ctx, t.tx, userID)
}

func (t *coordinationTx) GetCharacter(ctx context.Context, characterID int64) (*domain.Character, error) {
	return getCharacter(ctx, t.tx, characterID)
}

func (t *coordinationTx) GetActiveClaim(ctx context.Context, respawnID int64) (*domain.Claim, error) {
	return getActiveClaim(ctx, t.tx, respawnID)
}

func (t *coordinationTx) GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error) {
	return getOne(ctx, t.tx, scanClaim, domain.ErrClaimNotFound, SQLGetClaim, claimID)
}

func (t *coordinationTx) InsertClaim(ctx context.Context, c domain.Claim) (*domain.Claim, error) {
	created, err := scanClaim(t.tx.QueryRow(ctx, SQLInsertClaim,
		c.RespawnID, c.UserID, c.CharacterID, c.CharacterName, c.ClaimedAt, c.ExpiresAt))
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeUniqueViolation, ConstraintClaimsOneActive) {
			return nil, domain.ErrRespawnAlreadyClaimed
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "insert claim", mapInfraError(err))
	}
	return created, nil
}

func (t *coordinationTx) DeactivateClaim(ctx context.Context, claimID int64, at time.Time, reason string) error {
	tag, err := t.tx.Exec(ctx, SQLDeactivateClaim, claimID, at, reason)
	if err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "deactivate claim", mapInfraError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClaimNotActive
	}
	return nil
}

func (t *coordinationTx) MarkExpiringNotified(ctx context.Context, claimID int64, at time.Time) error {
	if _, err := t.tx.Exec(ctx, SQLMarkExpiringNotified, claimID, at); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "mark claim warned", mapInfraError(err))
	}
	return nil
}

func (t *coordinationTx) ListQueue(ctx context.Context, respawnID int64) ([]domain.QueueEntry, error) {
	return listQueue(ctx, t.tx, "list queue", SQLListQueue, respawnID)
}

func (t *coordinationTx) InsertQueueEntry(ctx context.Context, e domain.QueueEntry) (*domain.QueueEntry, error) {
	created, err := scanQueueEntry(t.tx.QueryRow(ctx, SQLInsertQueueEntry,
		e.RespawnID, e.UserID, e.CharacterID, e.CharacterName, e.JoinedAt))
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeUniqueViolation, ConstraintQueueUserRespawn) {
			return nil, domain.ErrAlreadyInQueue
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "insert queue entry", mapInfraError(err))
	}
	return created, nil
}

func (t *coordinationTx) DeleteQueueEntry(ctx context.Context, entryID int64) error {
	tag, err := t.tx.Exec(ctx, SQLDeleteQueueEntry, entryID)
	if err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "delete queue entry", mapInfraError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotInQueue
	}
	return nil
}

func (t *coordinationTx) GrantPriority(ctx context.Context, entryID int64, givenAt, expiresAt time.Time) error {
	if _, err := t.tx.Exec(ctx, SQLGrantPriority, entryID, givenAt, expiresAt); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "grant priority", mapInfraError(err))
	}
	return nil
}

func (t *coordinationTx) InsertNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	stored, err := scanNotification(t.tx.QueryRow(ctx, SQLInsertNotification,
		n.UserID, n.Title, n.Message, string(n.Type), n.RespawnID, n.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "insert notification", mapInfraError(err))
	}
	return stored, nil
}

func getActiveClaim(ctx context.Context, q querier, respawnID int64) (*domain.Claim, error) {
	// No active claim is not an error
	claim, err := getOne[domain.Claim](ctx, q, scanClaim, nil, SQLGetActiveClaim, respawnID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "get active claim", err)
	}
	return claim, nil
}

func listClaims(ctx context.Context, q querier, op, sql string, args ...any) ([]domain.Claim, error) {
	claims, err := getMany(ctx, q, scanClaim, sql, args...)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, op, err)
	}
	return claims, nil
}

func listQueue(ctx context.Context, q querier, op, sql string, args ...any) ([]domain.QueueEntry, error) {
	entries, err := getMany(ctx, q, scanQueueEntry, sql, args...)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, op, err)
	}
	return entries, nil
}
