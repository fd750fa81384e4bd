package repository

import (
	"context"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Notification defines the interface for notification data access
type Notification interface {
	InsertNotifications(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error)
	ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// PurgeNotifications deletes notifications read before readBefore and
	// notifications whose expires_at is before expiredBefore
	PurgeNotifications(ctx context.Context, readBefore, expiredBefore time.Time) (int64, error)
}
