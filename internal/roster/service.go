package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// Service manages guild members and their characters
type Service interface {
	RegisterMember(ctx context.Context, req RegisterMemberRequest) (*domain.Member, error)
	UpdateMember(ctx context.Context, userID string, update MemberUpdate) (*domain.Member, error)
	GetMember(ctx context.Context, userID string) (*domain.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)

	AddCharacter(ctx context.Context, userID string, req AddCharacterRequest) (*domain.Character, error)
	ListCharacters(ctx context.Context, userID string) ([]domain.Character, error)

	// Audiences for broadcast notifications
	MemberUserIDs(ctx context.Context) ([]string, error)
	AdminUserIDs(ctx context.Context) ([]string, error)

	CacheStats() CacheStats
}

// RegisterMemberRequest creates a member. UserID is generated when empty.
type RegisterMemberRequest struct {
	UserID   string          `json:"user_id,omitempty" validate:"omitempty,max=64"`
	Username string          `json:"username" validate:"required,max=64"`
	RoleTier domain.RoleTier `json:"role_tier" validate:"required,oneof=guild neutro"`
	IsAdmin  bool            `json:"is_admin"`
}

// MemberUpdate changes tier or admin flag; nil fields are left as they are
type MemberUpdate struct {
	Username *string          `json:"username,omitempty" validate:"omitempty,max=64"`
	RoleTier *domain.RoleTier `json:"role_tier,omitempty" validate:"omitempty,oneof=guild neutro"`
	IsAdmin  *bool            `json:"is_admin,omitempty"`
}

// AddCharacterRequest registers an in-game character
type AddCharacterRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	World    string `json:"world" validate:"required,max=32"`
	Vocation string `json:"vocation,omitempty" validate:"omitempty,max=32"`
	Level    int    `json:"level" validate:"min=0,max=5000"`
}

type service struct {
	repo  repository.Roster
	cache *memberCache
}

// NewService creates a roster service
func NewService(repo repository.Roster, cacheConfig CacheConfig) Service {
	return &service{
		repo:  repo,
		cache: newMemberCache(cacheConfig),
	}
}

func (s *service) RegisterMember(ctx context.Context, req RegisterMemberRequest) (*domain.Member, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !req.RoleTier.Valid() {
		return nil, domain.ErrInvalidRoleTier
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = uuid.NewString()
	}

	member, err := s.repo.CreateMember(ctx, domain.Member{
		UserID:   userID,
		Username: username,
		RoleTier: req.RoleTier,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(*member)
	logger.FromContext(ctx).Info(LogMsgMemberRegistered, "user_id", member.UserID, "username", member.Username, "role_tier", member.RoleTier)
	return member, nil
}

func (s *service) UpdateMember(ctx context.Context, userID string, update MemberUpdate) (*domain.Member, error) {
	member, err := s.repo.GetMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		member.Username = username
	}
	if update.RoleTier != nil {
		if !update.RoleTier.Valid() {
			return nil, domain.ErrInvalidRoleTier
		}
		member.RoleTier = *update.RoleTier
	}
	if update.IsAdmin != nil {
		member.IsAdmin = *update.IsAdmin
	}

	if err := s.repo.UpdateMember(ctx, *member); err != nil {
		return nil, err
	}

	s.cache.Invalidate(userID)
	logger.FromContext(ctx).Info(LogMsgMemberUpdated, "user_id", userID, "role_tier", member.RoleTier, "is_admin", member.IsAdmin)
	return member, nil
}

// GetMember resolves a member through the cache
func (s *service) GetMember(ctx context.Context, userID string) (*domain.Member, error) {
	if member, ok := s.cache.Get(userID); ok {
		return member, nil
	}
	member, err := s.repo.GetMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(*member)
	return member, nil
}

func (s *service) GetMemberByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return s.repo.GetMemberByUsername(ctx, strings.TrimSpace(username))
}

func (s *service) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return s.repo.ListMembers(ctx)
}

func (s *service) AddCharacter(ctx context.Context, userID string, req AddCharacterRequest) (*domain.Character, error) {
	name := strings.TrimSpace(req.Name)
	world := strings.TrimSpace(req.World)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCharacterNameRequired)
	case len(name) > MaxCharacterNameLength:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCharacterNameTooLong)
	case world == "":
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgWorldRequired)
	case req.Level < 0 || req.Level > MaxCharacterLevel:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgLevelOutOfRange)
	}

	character, err := s.repo.CreateCharacter(ctx, domain.Character{
		UserID:   userID,
		Name:     name,
		World:    world,
		Vocation: strings.TrimSpace(req.Vocation),
		Level:    req.Level,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgCharacterAdded, "user_id", userID, "character", character.Name)
	return character, nil
}

func (s *service) ListCharacters(ctx context.Context, userID string) ([]domain.Character, error) {
	return s.repo.ListCharacters(ctx, userID)
}

func (s *service) MemberUserIDs(ctx context.Context) ([]string, error) {
	return s.userIDs(ctx, func(domain.Member) bool { return true })
}

func (s *service) AdminUserIDs(ctx context.Context) ([]string, error) {
	return s.userIDs(ctx, func(m domain.Member) bool { return m.IsAdmin })
}

func (s *service) userIDs(ctx context.Context, keep func(domain.Member) bool) ([]string, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListMembersFailed, err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if keep(m) {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (s *service) CacheStats() CacheStats {
	return s.cache.Stats()
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgUsernameRequired)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgUsernameTooLong)
	}
	return nil
}
