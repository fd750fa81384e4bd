package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// RespawnRepository implements repository.Respawn for PostgreSQL
type RespawnRepository struct {
	db *pgxpool.Pool
}

// NewRespawnRepository creates a new RespawnRepository
func NewRespawnRepository(db *pgxpool.Pool) *RespawnRepository {
	return &RespawnRepository{db: db}
}

// GetRespawn returns a live respawn by id
func (r *RespawnRepository) GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error) {
	return getOne(ctx, r.db, scanRespawn, domain.ErrRespawnNotFound, SQLGetRespawn, id)
}

// ListRespawns returns every live respawn ordered by code
func (r *RespawnRepository) ListRespawns(ctx context.Context) ([]domain.Respawn, error) {
	respawns, err := getMany(ctx, r.db, scanRespawn, SQLListRespawns)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list respawns", err)
	}
	return respawns, nil
}

// CreateRespawn inserts a respawn
func (r *RespawnRepository) CreateRespawn(ctx context.Context, respawn domain.Respawn) (*domain.Respawn, error) {
	created, err := scanRespawn(r.db.QueryRow(ctx, SQLInsertRespawn, respawn.Code, respawn.Name, respawn.City))
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeUniqueViolation, ConstraintRespawnsCodeLive) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRespawnCodeTaken, respawn.Code)
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "create respawn", mapInfraError(err))
	}
	return created, nil
}

// ArchiveRespawn hides a respawn and drops its queue and favorites.
// It takes the respawn lock so it cannot race a claim.
func (r *RespawnRepository) ArchiveRespawn(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTxFailed, err)
	}
	defer SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, SQLAdvisoryLock, LockKey(LockNamespaceRespawn, fmt.Sprint(id))); err != nil {
		return fmt.Errorf(ErrMsgAcquireLockFailed, err)
	}

	var active bool
	if err := tx.QueryRow(ctx, SQLHasActiveClaim, id).Scan(&active); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "check active claim", err)
	}
	if active {
		return domain.ErrRespawnHasActiveClaim
	}

	tag, err := tx.Exec(ctx, SQLArchiveRespawn, id)
	if err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "archive respawn", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRespawnNotFound
	}

	if _, err := tx.Exec(ctx, SQLDeleteRespawnQueue, id); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "clear respawn queue", err)
	}
	if _, err := tx.Exec(ctx, SQLDeleteRespawnFavorites, id); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "clear respawn favorites", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTxFailed, err)
	}
	return nil
}
