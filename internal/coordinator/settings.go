package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/repository"
)

// SettingsCache reads claim timings from system_settings through a short-lived cache.
// Config values are the defaults; stored settings override them key by key.
type SettingsCache struct {
	repo     repository.Settings
	defaults domain.ClaimSettings
	lru      *expirable.LRU[string, domain.ClaimSettings]
}

// NewSettingsCache creates a settings cache. A non-positive ttl uses DefaultSettingsCacheTTL.
func NewSettingsCache(repo repository.Settings, defaults domain.ClaimSettings, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = DefaultSettingsCacheTTL
	}
	return &SettingsCache{
		repo:     repo,
		defaults: defaults,
		lru:      expirable.NewLRU[string, domain.ClaimSettings](settingsCacheSize, nil, ttl),
	}
}

// ClaimSettings returns the cached timings, loading them on a miss.
// A store failure falls back to the defaults without caching them.
func (c *SettingsCache) ClaimSettings(ctx context.Context) domain.ClaimSettings {
	if settings, ok := c.lru.Get(settingsCacheKey); ok {
		return settings
	}

	values, err := c.repo.GetSettings(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgSettingsFallback, "error", err)
		return c.defaults
	}

	settings := parseClaimSettings(ctx, values, c.defaults)
	c.lru.Add(settingsCacheKey, settings)
	return settings
}

// UpdateClaimSettings stores all three timings and drops the cached copy
func (c *SettingsCache) UpdateClaimSettings(ctx context.Context, settings domain.ClaimSettings) error {
	if !wholePositiveMinutes(settings.GuildDuration) ||
		!wholePositiveMinutes(settings.NeutroDuration) ||
		!wholePositiveMinutes(settings.PriorityWindow) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgInvalidSettings)
	}

	updates := []struct {
		key   string
		value time.Duration
	}{
		{domain.SettingClaimDurationGuildMinutes, settings.GuildDuration},
		{domain.SettingClaimDurationNeutroMinutes, settings.NeutroDuration},
		{domain.SettingPriorityWindowMinutes, settings.PriorityWindow},
	}
	var errs []error
	for _, u := range updates {
		if err := c.repo.UpsertSetting(ctx, u.key, strconv.Itoa(int(u.value.Minutes()))); err != nil {
			errs = append(errs, err)
		}
	}

	c.lru.Remove(settingsCacheKey)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf(ErrMsgUpdateSettings, err)
	}
	return nil
}

// Invalidate forces the next read to hit the store
func (c *SettingsCache) Invalidate() {
	c.lru.Purge()
}

func parseClaimSettings(ctx context.Context, values map[string]string, defaults domain.ClaimSettings) domain.ClaimSettings {
	settings := defaults
	for key, target := range map[string]*time.Duration{
		domain.SettingClaimDurationGuildMinutes:  &settings.GuildDuration,
		domain.SettingClaimDurationNeutroMinutes: &settings.NeutroDuration,
		domain.SettingPriorityWindowMinutes:      &settings.PriorityWindow,
	} {
		raw, ok := values[key]
		if !ok {
			continue
		}
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			logger.FromContext(ctx).Warn(LogMsgSettingInvalid, "key", key, "value", raw)
			continue
		}
		*target = time.Duration(minutes) * time.Minute
	}
	return settings
}

func wholePositiveMinutes(d time.Duration) bool {
	return d >= time.Minute && d%time.Minute == 0
}
