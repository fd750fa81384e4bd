package repository

import (
	"context"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Favorite defines the interface for favorite respawns
type Favorite interface {
	AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID string, respawnID int64) error
	ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error)
}
