package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// LockKey derives a consistent positive int64 advisory lock key from its parts
func LockKey(parts ...string) int64 {
	h := sha256.Sum256([]byte(strings.Join(parts, HashSeparator)))
	// Use first 8 bytes as int64, masking MSB to ensure positive value
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}

// pgError returns the PostgreSQL error behind err, if any
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isConstraintViolation reports whether err violates the named constraint with the given code
func isConstraintViolation(err error, code, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == code && (constraint == "" || pgErr.ConstraintName == constraint)
}

// mapInfraError converts driver failures that callers should see as system errors
func mapInfraError(err error) error {
	if pgErr, ok := pgError(err); ok && pgErr.Code == PgErrorCodeDeadlockDetected {
		return errors.Join(domain.ErrDeadlockDetected, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(domain.ErrConnectionTimeout, err)
	}
	return err
}

// collect scans every row with scan and closes rows
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func scanRespawn(row pgx.Row) (*domain.Respawn, error) {
	var r domain.Respawn
	if err := row.Scan(&r.ID, &r.Code, &r.Name, &r.City, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	var tier string
	if err := row.Scan(&m.UserID, &m.Username, &tier, &m.IsAdmin, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.RoleTier = domain.RoleTier(tier)
	return &m, nil
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.World, &c.Vocation, &c.Level, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanFavorite(row pgx.Row) (*domain.Favorite, error) {
	var f domain.Favorite
	if err := row.Scan(&f.UserID, &f.RespawnID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	err := row.Scan(&c.ID, &c.RespawnID, &c.UserID, &c.CharacterID, &c.CharacterName, &c.ClaimedAt,
		&c.ExpiresAt, &c.IsActive, &c.ReleasedAt, &c.EndReason, &c.ExpiringNotifiedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanQueueEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	err := row.Scan(&e.ID, &e.RespawnID, &e.UserID, &e.CharacterID, &e.CharacterName, &e.JoinedAt,
		&e.PriorityGivenAt, &e.PriorityExpiresAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.RespawnID, &n.IsRead,
		&n.ReadAt, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}

// getOne runs a single-row query, mapping pgx.ErrNoRows to notFound
func getOne[T any](ctx context.Context, q querier, scan func(pgx.Row) (*T, error), notFound error, sql string, args ...any) (*T, error) {
	item, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, mapInfraError(err)
	}
	return item, nil
}

// getMany runs a multi-row query
func getMany[T any](ctx context.Context, q querier, scan func(pgx.Row) (*T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapInfraError(err)
	}
	return collect(rows, scan)
}
