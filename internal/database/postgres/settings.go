package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository implements repository.Settings for PostgreSQL
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings returns every system setting
func (r *SettingsRepository) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, SQLGetSettings)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, "get settings", mapInfraError(err))
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf(ErrMsgQueryFailed, "scan setting", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// UpsertSetting writes a single setting
func (r *SettingsRepository) UpsertSetting(ctx context.Context, key, value string) error {
	if _, err := r.db.Exec(ctx, SQLUpsertSetting, key, value); err != nil {
		return fmt.Errorf(ErrMsgQueryFailed, "upsert setting", mapInfraError(err))
	}
	return nil
}
