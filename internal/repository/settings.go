package repository

import "context"

// Settings defines the interface for the system_settings key/value table
type Settings interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}
