package repository

import (
	"context"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Roster defines the interface for guild members and their characters
type Roster interface {
	GetMember(ctx context.Context, userID string) (*domain.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
	CreateMember(ctx context.Context, member domain.Member) (*domain.Member, error)
	UpdateMember(ctx context.Context, member domain.Member) error

	GetCharacter(ctx context.Context, id int64) (*domain.Character, error)
	ListCharacters(ctx context.Context, userID string) ([]domain.Character, error)
	CreateCharacter(ctx context.Context, character domain.Character) (*domain.Character, error)
}
