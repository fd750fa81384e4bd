package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/database/postgres"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// Repositories holds the PostgreSQL store implementations
type Repositories struct {
	Respawn      repository.Respawn
	Roster       repository.Roster
	Coordination repository.Coordination
	Favorite     repository.Favorite
	Notification repository.Notification
	Settings     repository.Settings
}

// InitializeRepositories creates every store over one pool
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Respawn:      postgres.NewRespawnRepository(dbPool),
		Roster:       postgres.NewRosterRepository(dbPool),
		Coordination: postgres.NewCoordinationRepository(dbPool),
		Favorite:     postgres.NewFavoriteRepository(dbPool),
		Notification: postgres.NewNotificationRepository(dbPool),
		Settings:     postgres.NewSettingsRepository(dbPool),
	}
}
