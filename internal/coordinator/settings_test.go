package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

func TestSettingsCache_StoredValuesOverrideDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.settings[domain.SettingClaimDurationGuildMinutes] = "120"
	store.settings[domain.SettingPriorityWindowMinutes] = "not-a-number"

	cache := NewSettingsCache(store, domain.DefaultClaimSettings(), time.Minute)
	got := cache.ClaimSettings(ctx)

	assert.Equal(t, 120*time.Minute, got.GuildDuration)
	assert.Equal(t, domain.DefaultNeutroClaimDuration, got.NeutroDuration)
	assert.Equal(t, domain.DefaultPriorityWindow, got.PriorityWindow, "invalid values fall back")
}

func TestSettingsCache_CachesUntilUpdated(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cache := NewSettingsCache(store, domain.DefaultClaimSettings(), time.Hour)

	assert.Equal(t, domain.DefaultGuildClaimDuration, cache.ClaimSettings(ctx).GuildDuration)

	// Direct store writes are not seen while cached
	store.settings[domain.SettingClaimDurationGuildMinutes] = "60"
	assert.Equal(t, domain.DefaultGuildClaimDuration, cache.ClaimSettings(ctx).GuildDuration)

	cache.Invalidate()
	assert.Equal(t, 60*time.Minute, cache.ClaimSettings(ctx).GuildDuration)

	err := cache.UpdateClaimSettings(ctx, domain.ClaimSettings{
		GuildDuration:  180 * time.Minute,
		NeutroDuration: 100 * time.Minute,
		PriorityWindow: 3 * time.Minute,
	})
	require.NoError(t, err)

	got := cache.ClaimSettings(ctx)
	assert.Equal(t, 180*time.Minute, got.GuildDuration)
	assert.Equal(t, 100*time.Minute, got.NeutroDuration)
	assert.Equal(t, 3*time.Minute, got.PriorityWindow)
	assert.Equal(t, "180", store.settings[domain.SettingClaimDurationGuildMinutes])
}

func TestSettingsCache_RejectsInvalidUpdate(t *testing.T) {
	cache := NewSettingsCache(newMemStore(), domain.DefaultClaimSettings(), time.Minute)

	tests := []struct {
		name     string
		settings domain.ClaimSettings
	}{
		{"zero window", domain.ClaimSettings{GuildDuration: time.Hour, NeutroDuration: time.Hour}},
		{"fractional minutes", domain.ClaimSettings{GuildDuration: 90 * time.Second, NeutroDuration: time.Hour, PriorityWindow: time.Minute}},
		{"negative", domain.ClaimSettings{GuildDuration: -time.Hour, NeutroDuration: time.Hour, PriorityWindow: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.UpdateClaimSettings(context.Background(), tt.settings)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsCache_StoreFailureUsesDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.failGetSettings = errors.New("connection refused")
	cache := NewSettingsCache(store, domain.DefaultClaimSettings(), time.Minute)

	assert.Equal(t, domain.DefaultClaimSettings(), cache.ClaimSettings(ctx))

	store.failGetSettings = nil
	store.settings[domain.SettingClaimDurationNeutroMinutes] = "45"
	assert.Equal(t, 45*time.Minute, cache.ClaimSettings(ctx).NeutroDuration, "fallback is not cached")
}

func TestClaimRespawn_UsesStoredDuration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.settings[domain.SettingClaimDurationGuildMinutes] = "60"
	alice := h.store.addMember("alice", domain.RoleTierGuild)

	claim, err := h.svc.ClaimRespawn(ctx, "alice", h.x2.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(60*time.Minute), claim.ExpiresAt)
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []int64{1, 3, 7}, uniqueSorted([]int64{7, 3, 7, 1, 3}))
	assert.Empty(t, uniqueSorted(nil))
}
