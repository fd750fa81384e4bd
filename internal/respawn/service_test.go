package respawn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

type MockRespawnRepository struct {
	mock.Mock
}

func (m *MockRespawnRepository) GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Respawn), args.Error(1)
}

func (m *MockRespawnRepository) ListRespawns(ctx context.Context) ([]domain.Respawn, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Respawn), args.Error(1)
}

func (m *MockRespawnRepository) CreateRespawn(ctx context.Context, r domain.Respawn) (*domain.Respawn, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Respawn), args.Error(1)
}

func (m *MockRespawnRepository) ArchiveRespawn(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error) {
	args := m.Called(ctx, userID, respawnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) RemoveFavorite(ctx context.Context, userID string, respawnID int64) error {
	return m.Called(ctx, userID, respawnID).Error(0)
}

func (m *MockFavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Favorite), args.Error(1)
}

// stubCoordination serves canned reads; writes are never used here
type stubCoordination struct {
	repository.Coordination
	claims  []domain.Claim
	entries []domain.QueueEntry
}

func (s *stubCoordination) ListActiveClaims(context.Context) ([]domain.Claim, error) {
	return s.claims, nil
}

func (s *stubCoordination) ListAllQueueEntries(context.Context) ([]domain.QueueEntry, error) {
	return s.entries, nil
}

func (s *stubCoordination) ListQueue(_ context.Context, respawnID int64) ([]domain.QueueEntry, error) {
	var out []domain.QueueEntry
	for _, e := range s.entries {
		if e.RespawnID == respawnID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestCreateRespawn(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes code", func(t *testing.T) {
		repo := new(MockRespawnRepository)
		svc := NewService(repo, &stubCoordination{}, new(MockFavoriteRepository), event.NewMemoryBus())

		repo.On("CreateRespawn", ctx, domain.Respawn{Code: "X9", Name: "Falcon Bastion", City: "Edron"}).
			Return(&domain.Respawn{ID: 9, Code: "X9", Name: "Falcon Bastion", City: "Edron"}, nil)

		created, err := svc.CreateRespawn(ctx, CreateRespawnRequest{Code: " x9 ", Name: "Falcon Bastion ", City: "Edron"})
		require.NoError(t, err)
		assert.Equal(t, int64(9), created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := NewService(new(MockRespawnRepository), &stubCoordination{}, new(MockFavoriteRepository), event.NewMemoryBus())

		_, err := svc.CreateRespawn(ctx, CreateRespawnRequest{Name: "No Code"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.CreateRespawn(ctx, CreateRespawnRequest{Code: "Z1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.CreateRespawn(ctx, CreateRespawnRequest{Code: "THIS-CODE-IS-WAY-TOO-LONG", Name: "Long"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDeleteRespawn_PassesThroughActiveClaim(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRespawnRepository)
	svc := NewService(repo, &stubCoordination{}, new(MockFavoriteRepository), event.NewMemoryBus())

	repo.On("ArchiveRespawn", ctx, int64(1)).Return(domain.ErrRespawnHasActiveClaim).Once()
	repo.On("ArchiveRespawn", ctx, int64(1)).Return(nil).Once()

	assert.ErrorIs(t, svc.DeleteRespawn(ctx, 1), domain.ErrRespawnHasActiveClaim)
	assert.NoError(t, svc.DeleteRespawn(ctx, 1))
}

func TestOverview_DerivesState(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	grantedUntil := now.Add(3 * time.Minute)

	repo := new(MockRespawnRepository)
	repo.On("ListRespawns", ctx).Return([]domain.Respawn{
		{ID: 1, Code: "X1"}, {ID: 2, Code: "X2"}, {ID: 3, Code: "F1"}, {ID: 4, Code: "R1"},
	}, nil)
	coord := &stubCoordination{
		claims: []domain.Claim{
			{ID: 10, RespawnID: 2, UserID: "alice", IsActive: true, ExpiresAt: now.Add(time.Hour)},
			// Overdue, awaiting housekeeping
			{ID: 11, RespawnID: 4, UserID: "dave", IsActive: true, ExpiresAt: now.Add(-time.Minute)},
		},
		entries: []domain.QueueEntry{
			{ID: 21, RespawnID: 2, UserID: "carol", JoinedAt: now.Add(-time.Minute)},
			{ID: 20, RespawnID: 2, UserID: "bob", JoinedAt: now.Add(-2 * time.Minute)},
			{ID: 30, RespawnID: 3, UserID: "erin", JoinedAt: now.Add(-time.Minute), PriorityGivenAt: &now, PriorityExpiresAt: &grantedUntil},
		},
	}
	svc := NewService(repo, coord, new(MockFavoriteRepository), event.NewMemoryBus()).(*service)
	svc.now = func() time.Time { return now }

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview, 4)

	assert.Equal(t, domain.RespawnStateFree, overview[0].State)
	assert.Zero(t, overview[0].QueueLength)

	assert.Equal(t, domain.RespawnStateClaimed, overview[1].State)
	require.NotNil(t, overview[1].ActiveClaim)
	assert.Equal(t, "alice", overview[1].ActiveClaim.UserID)
	assert.Equal(t, 2, overview[1].QueueLength)

	assert.Equal(t, domain.RespawnStateReserved, overview[2].State)
	require.NotNil(t, overview[2].PriorityHolder)
	assert.Equal(t, "erin", overview[2].PriorityHolder.UserID)

	assert.Equal(t, domain.RespawnStateFree, overview[3].State)
	assert.Nil(t, overview[3].ActiveClaim)

	repo.On("GetRespawn", ctx, int64(2)).Return(&domain.Respawn{ID: 2, Code: "X2"}, nil)
	queue, err := svc.Queue(ctx, 2)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "bob", queue[0].UserID, "wait order is by joined_at")
}

func TestFavorites_PublishEvents(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRespawnRepository)
	favs := new(MockFavoriteRepository)
	bus := event.NewMemoryBus()

	var got []event.Type
	event.SubscribeAll(bus, func(_ context.Context, evt event.Event) error {
		got = append(got, evt.Type)
		return nil
	}, event.FavoriteAdded, event.FavoriteRemoved)

	svc := NewService(repo, &stubCoordination{}, favs, bus)

	repo.On("GetRespawn", ctx, int64(404)).Return(nil, domain.ErrRespawnNotFound)
	_, err := svc.AddFavorite(ctx, "alice", 404)
	assert.ErrorIs(t, err, domain.ErrRespawnNotFound)

	repo.On("GetRespawn", ctx, int64(2)).Return(&domain.Respawn{ID: 2, Code: "X2"}, nil)
	favs.On("AddFavorite", ctx, "alice", int64(2)).Return(&domain.Favorite{UserID: "alice", RespawnID: 2}, nil)
	favs.On("RemoveFavorite", ctx, "alice", int64(2)).Return(nil).Once()
	favs.On("RemoveFavorite", ctx, "alice", int64(2)).Return(domain.ErrFavoriteNotFound).Once()

	_, err = svc.AddFavorite(ctx, "alice", 2)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFavorite(ctx, "alice", 2))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, "alice", 2), domain.ErrFavoriteNotFound)

	assert.Equal(t, []event.Type{event.FavoriteAdded, event.FavoriteRemoved}, got)
}
