package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// NotificationRepository implements repository.Notification for PostgreSQL
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// InsertNotifications stores a fan-out of notifications in one round trip
func (r *NotificationRepository) InsertNotifications(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error) {
	if len(notifications) == 0 {
		return []domain.Notification{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTxFailed, err)
	}
	defer SafeRollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(SQLInsertNotification, n.UserID, n.Title, n.Message, string(n.Type), n.RespawnID, n.ExpiresAt)
	}

	results := tx.SendBatch(ctx, batch)
	stored := make([]domain.Notification, 0, len(notifications))
	for range notifications {
		n, err := scanNotification(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf(ErrMsgQueryFailed, "insert notification", mapInfraError(err))
		}
		stored = append(stored, *n)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "insert notifications", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTxFailed, err)
	}
	return stored, nil
}

// ListNotifications returns a user's notifications in creation order
func (r *NotificationRepository) ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	list, err := getMany(ctx, r.db, scanNotification, SQLListNotifications, filter.UserID, filter.Since, filter.UnreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list notifications", err)
	}
	return list, nil
}

// MarkRead flags one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, SQLMarkNotificationRead, userID, id, at)
	if err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "mark notification read", mapInfraError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, SQLMarkAllNotificationsRead, userID, at)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgQueryFailed, "mark all notifications read", mapInfraError(err))
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the unread badge count
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, SQLCountUnreadNotifications, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf(ErrMsgQueryFailed, "count unread notifications", mapInfraError(err))
	}
	return count, nil
}

// PurgeNotifications deletes stale read and expired notifications
func (r *NotificationRepository) PurgeNotifications(ctx context.Context, readBefore, expiredBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, SQLPurgeNotifications, readBefore, expiredBefore)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgQueryFailed, "purge notifications", mapInfraError(err))
	}
	return tag.RowsAffected(), nil
}
