package respawn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// Service manages the respawn registry and users' favorites
type Service interface {
	ListRespawns(ctx context.Context) ([]domain.Respawn, error)
	GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error)
	CreateRespawn(ctx context.Context, req CreateRespawnRequest) (*domain.Respawn, error)
	// DeleteRespawn archives a respawn; it fails while a claim is active
	DeleteRespawn(ctx context.Context, id int64) error

	// Overview joins every respawn with its active claim and queue
	Overview(ctx context.Context) ([]domain.RespawnOverview, error)
	// Queue returns one respawn's waiters in wait order
	Queue(ctx context.Context, id int64) ([]domain.QueueEntry, error)

	AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID string, respawnID int64) error
	ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error)
}

// CreateRespawnRequest registers a respawn
type CreateRespawnRequest struct {
	Code string `json:"code" validate:"required,max=16,respawncode"`
	Name string `json:"name" validate:"required,max=128"`
	City string `json:"city" validate:"max=64"`
}

type service struct {
	repo      repository.Respawn
	coord     repository.Coordination
	favorites repository.Favorite
	bus       event.Bus
	now       func() time.Time
}

// NewService creates a respawn service
func NewService(repo repository.Respawn, coord repository.Coordination, favorites repository.Favorite, bus event.Bus) Service {
	return &service{
		repo:      repo,
		coord:     coord,
		favorites: favorites,
		bus:       bus,
		now:       time.Now,
	}
}

func (s *service) ListRespawns(ctx context.Context) ([]domain.Respawn, error) {
	return s.repo.ListRespawns(ctx)
}

func (s *service) GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error) {
	return s.repo.GetRespawn(ctx, id)
}

func (s *service) CreateRespawn(ctx context.Context, req CreateRespawnRequest) (*domain.Respawn, error) {
	r := domain.Respawn{
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
		City: strings.TrimSpace(req.City),
	}
	switch {
	case r.Code == "":
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCodeRequired)
	case r.Name == "":
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgNameRequired)
	case len(r.Code) > MaxCodeLength:
		return nil, fmt.Errorf("%w: "+ErrMsgFieldTooLong, domain.ErrInvalidInput, "code")
	case len(r.Name) > MaxNameLength:
		return nil, fmt.Errorf("%w: "+ErrMsgFieldTooLong, domain.ErrInvalidInput, "name")
	case len(r.City) > MaxCityLength:
		return nil, fmt.Errorf("%w: "+ErrMsgFieldTooLong, domain.ErrInvalidInput, "city")
	}

	created, err := s.repo.CreateRespawn(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgRespawnCreated, "respawn_id", created.ID, "code", created.Code)
	return created, nil
}

func (s *service) DeleteRespawn(ctx context.Context, id int64) error {
	if err := s.repo.ArchiveRespawn(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgRespawnArchived, "respawn_id", id)
	return nil
}

func (s *service) Overview(ctx context.Context) ([]domain.RespawnOverview, error) {
	respawns, err := s.repo.ListRespawns(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgOverviewFailed, err)
	}
	claims, err := s.coord.ListActiveClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgOverviewFailed, err)
	}
	entries, err := s.coord.ListAllQueueEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgOverviewFailed, err)
	}

	claimByRespawn := make(map[int64]domain.Claim, len(claims))
	for _, c := range claims {
		claimByRespawn[c.RespawnID] = c
	}
	queues := make(map[int64][]domain.QueueEntry)
	for _, e := range entries {
		queues[e.RespawnID] = append(queues[e.RespawnID], e)
	}

	now := s.now()
	out := make([]domain.RespawnOverview, 0, len(respawns))
	for _, r := range respawns {
		queue := queues[r.ID]
		domain.OrderQueue(queue)

		ov := domain.RespawnOverview{Respawn: r, QueueLength: len(queue)}
		if c, ok := claimByRespawn[r.ID]; ok && c.IsLive(now) {
			claim := c
			ov.ActiveClaim = &claim
		}
		if holder := domain.PriorityHolder(queue, now); holder != nil {
			h := *holder
			ov.PriorityHolder = &h
		}
		ov.State = domain.DeriveState(ov.ActiveClaim, queue, now)
		out = append(out, ov)
	}
	return out, nil
}

func (s *service) Queue(ctx context.Context, id int64) ([]domain.QueueEntry, error) {
	if _, err := s.repo.GetRespawn(ctx, id); err != nil {
		return nil, err
	}
	queue, err := s.coord.ListQueue(ctx, id)
	if err != nil {
		return nil, err
	}
	domain.OrderQueue(queue)
	return queue, nil
}

func (s *service) AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error) {
	if _, err := s.repo.GetRespawn(ctx, respawnID); err != nil {
		return nil, err
	}
	fav, err := s.favorites.AddFavorite(ctx, userID, respawnID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, event.NewFavoriteEvent(event.FavoriteAdded, *fav))
	return fav, nil
}

func (s *service) RemoveFavorite(ctx context.Context, userID string, respawnID int64) error {
	if err := s.favorites.RemoveFavorite(ctx, userID, respawnID); err != nil {
		return err
	}
	s.publish(ctx, event.NewFavoriteEvent(event.FavoriteRemoved, domain.Favorite{
		UserID:    userID,
		RespawnID: respawnID,
		CreatedAt: s.now(),
	}))
	return nil
}

func (s *service) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return s.favorites.ListFavorites(ctx, userID)
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}
