package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// FavoriteRepository implements repository.Favorite for PostgreSQL
type FavoriteRepository struct {
	db *pgxpool.Pool
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// AddFavorite marks a respawn as favorite; adding twice is a no-op
func (r *FavoriteRepository) AddFavorite(ctx context.Context, userID string, respawnID int64) (*domain.Favorite, error) {
	fav, err := scanFavorite(r.db.QueryRow(ctx, SQLInsertFavorite, userID, respawnID))
	if err != nil {
		if isConstraintViolation(err, PgErrorCodeForeignKeyViolation, "") {
			return nil, domain.ErrRespawnNotFound
		}
		return nil, fmt.Errorf(ErrMsgQueryFailed, "add favorite", mapInfraError(err))
	}
	return fav, nil
}

// RemoveFavorite deletes a favorite
func (r *FavoriteRepository) RemoveFavorite(ctx context.Context, userID string, respawnID int64) error {
	tag, err := r.db.Exec(ctx, SQLDeleteFavorite, userID, respawnID)
	if err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "remove favorite", mapInfraError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

// ListFavorites returns a user's favorites on live respawns
func (r *FavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	favs, err := getMany(ctx, r.db, scanFavorite, SQLListFavorites, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "list favorites", err)
	}
	return favs, nil
}
