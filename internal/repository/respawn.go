package repository

import (
	"context"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// Respawn defines the interface for the respawn registry
type Respawn interface {
	GetRespawn(ctx context.Context, id int64) (*domain.Respawn, error)
	ListRespawns(ctx context.Context) ([]domain.Respawn, error)
	CreateRespawn(ctx context.Context, respawn domain.Respawn) (*domain.Respawn, error)
	// ArchiveRespawn hides a respawn from the registry. Claim history is kept.
	ArchiveRespawn(ctx context.Context, id int64) error
}
