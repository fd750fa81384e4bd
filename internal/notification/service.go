package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// Service stores, lists and expires user notifications
type Service interface {
	// List returns notifications newer than filter.Since, oldest first
	List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)

	// Send stores notifications and publishes one notification.created event each
	Send(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error)

	// Purge deletes read notifications past retention and expired ones past the TTL
	Purge(ctx context.Context) (int64, error)
}

type service struct {
	repo      repository.Notification
	bus       event.Bus
	retention time.Duration
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a notification service. Non-positive durations use the defaults.
func NewService(repo repository.Notification, bus event.Bus, retention, ttl time.Duration) Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		repo:      repo,
		bus:       bus,
		retention: retention,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *service) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	return s.repo.ListNotifications(ctx, filter)
}

func (s *service) MarkRead(ctx context.Context, userID string, id int64) error {
	if err := s.repo.MarkRead(ctx, userID, id, s.now()); err != nil {
		return err
	}
	s.publish(ctx, event.NewNotificationReadEvent(userID, id, 1))
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.publish(ctx, event.NewNotificationReadEvent(userID, 0, count))
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) Send(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error) {
	stored, err := s.repo.InsertNotifications(ctx, notifications)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgStoreFailed, err)
	}
	for _, n := range stored {
		s.publish(ctx, event.NewNotificationCreatedEvent(n))
	}
	return stored, nil
}

func (s *service) Purge(ctx context.Context) (int64, error) {
	now := s.now()
	purged, err := s.repo.PurgeNotifications(ctx, now.Add(-s.retention), now.Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf(ErrMsgPurgeFailed, err)
	}
	if purged > 0 {
		logger.FromContext(ctx).Info(LogMsgPurged, "count", purged)
	}
	return purged, nil
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}
