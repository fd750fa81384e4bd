package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/respawn"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
)

// MockCoordinatorService is a testify mock of coordinator.Service
type MockCoordinatorService struct {
	mock.Mock
}

func (m *MockCoordinatorService) ClaimRespawn(ctx context.Context, userID string, respawnID, characterID int64) (*domain.Claim, error) {
	args := m.Called(ctx, userID, respawnID, characterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockCoordinatorService) ReleaseClaim(ctx context.Context, userID string, claimID int64) error {
	return m.Called(ctx, userID, claimID).Error(0)
}

func (m *MockCoordinatorService) JoinQueue(ctx context.Context, userID string, respawnID, characterID int64) (*coordinator.JoinResult, error) {
	args := m.Called(ctx, userID, respawnID, characterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coordinator.JoinResult), args.Error(1)
}

func (m *MockCoordinatorService) LeaveQueue(ctx context.Context, userID string, respawnID int64) error {
	return m.Called(ctx, userID, respawnID).Error(0)
}

func (m *MockCoordinatorService) HandleExpiredClaims(ctx context.Context) (coordinator.SweepReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(coordinator.SweepReport), args.Error(1)
}

func (m *MockCoordinatorService) CleanupExpiredPriorities(ctx context.Context) (coordinator.SweepReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(coordinator.SweepReport), args.Error(1)
}

func (m *MockCoordinatorService) WarnExpiringClaims(ctx context.Context) (coordinator.SweepReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(coordinator.SweepReport), args.Error(1)
}

func (m *MockCoordinatorService) Sweep(ctx context.Context) (coordinator.SweepReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(coordinator.SweepReport), args.Error(1)
}

func (m *MockCoordinatorService) RunHousekeeping(ctx context.Context) (coordinator.HousekeepingReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(coordinator.HousekeepingReport), args.Error(1)
}

func (m *MockCoordinatorService) GetUserState(ctx context.Context, userID string) (*coordinator.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coordinator.UserState), args.Error(1)
}

func (m *MockCoordinatorService) ClaimSettings(ctx context.Context) domain.ClaimSettings {
	return m.Called(ctx).Get(0).(domain.ClaimSettings)
}

func (m *MockCoordinatorService) UpdateClaimSettings(ctx context.Context, settings domain.ClaimSettings) error {
	return m.Called(ctx, settings).Error(0)
}

// MockRespawnService is a testify mock of respawn.Service
type MockRespawnService struct {
	mock.Mock
}

func (m *MockRespawnService) ListRespawns(ctx context.Context) ([]domain.Respawn, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Respawn), args.Error(1)
}

func (m *MockRespawnService) GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Respawn), args.Error(1)
}

func (m *MockRespawnService) CreateRespawn(ctx context.Context, req respawn.CreateRespawnRequest) (*domain.Respawn, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Respawn), args.Error(1)
}

func (m *MockRespawnService) DeleteRespawn(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRespawnService) Overview(ctx context.Context) ([]domain.RespawnOverview, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RespawnOverview), args.Error(1)
}

func (m *MockRespawnService) Queue(ctx context.Context, id int64) ([]domain.QueueEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.QueueEntry), args.Error(1)
}

func (m *MockRespawnService) AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error) {
	args := m.Called(ctx, userID, respawnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favorite), args.Error(1)
}

func (m *MockRespawnService) RemoveFavorite(ctx context.Context, userID string, respawnID int64) error {
	return m.Called(ctx, userID, respawnID).Error(0)
}

func (m *MockRespawnService) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Favorite), args.Error(1)
}

// MockRosterService is a testify mock of roster.Service
type MockRosterService struct {
	mock.Mock
}

func (m *MockRosterService) RegisterMember(ctx context.Context, req roster.RegisterMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockRosterService) UpdateMember(ctx context.Context, userID string, update roster.MemberUpdate) (*domain.Member, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockRosterService) GetMember(ctx context.Context, userID string) (*domain.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockRosterService) GetMemberByUsername(ctx context.Context, username string) (*domain.Member, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockRosterService) ListMembers(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockRosterService) AddCharacter(ctx context.Context, userID string, req roster.AddCharacterRequest) (*domain.Character, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockRosterService) ListCharacters(ctx context.Context, userID string) ([]domain.Character, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Character), args.Error(1)
}

func (m *MockRosterService) MemberUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRosterService) AdminUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRosterService) CacheStats() roster.CacheStats {
	return m.Called().Get(0).(roster.CacheStats)
}

// MockNotificationService is a testify mock of notification.Service
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) Send(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error) {
	args := m.Called(ctx, notifications)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationService) Purge(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// newRequest builds a request as the given user; params are chi URL params as name, value pairs
func newRequest(method, target, body, userID string, params ...string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := req.Context()
	if userID != "" {
		ctx = auth.WithIdentity(ctx, auth.Identity{UserID: userID})
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
