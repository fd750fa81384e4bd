package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/RespawnQueue_Go/internal/auth"
	"github.com/osse101/RespawnQueue_Go/internal/config"
	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/notification"
	"github.com/osse101/RespawnQueue_Go/internal/respawn"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
)

// Services holds the application services built over the repositories
type Services struct {
	Roster        roster.Service
	Respawns      respawn.Service
	Coordinator   coordinator.Service
	Notifications notification.Service
	Settings      *coordinator.SettingsCache
	Tokens        *auth.TokenManager
}

// InitializeServices wires the services. bus is what services publish to,
// normally the resilient publisher.
func InitializeServices(cfg *config.Config, repos *Repositories, bus event.Bus) (*Services, error) {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateTokenIssuer, err)
	}

	defaults := domain.ClaimSettings{
		GuildDuration:  cfg.ClaimDurationGuild,
		NeutroDuration: cfg.ClaimDurationNeutro,
		PriorityWindow: cfg.PriorityWindow,
	}
	settings := coordinator.NewSettingsCache(repos.Settings, defaults, coordinator.DefaultSettingsCacheTTL)

	notifications := notification.NewService(repos.Notification, bus, cfg.NotificationRetention, cfg.NotificationTTL)

	svcs := &Services{
		Roster:        roster.NewService(repos.Roster, roster.CacheConfig{}),
		Respawns:      respawn.NewService(repos.Respawn, repos.Coordination, repos.Favorite, bus),
		Coordinator:   coordinator.NewService(repos.Coordination, settings, bus, cfg.ClaimExpiringWarning, notifications),
		Notifications: notifications,
		Settings:      settings,
		Tokens:        tokens,
	}

	effective := settings.ClaimSettings(context.Background())
	slog.Info(LogMsgEffectiveClaimSettings,
		"guild", effective.GuildDuration,
		"neutro", effective.NeutroDuration,
		"priority_window", effective.PriorityWindow,
		"expiring_warning", cfg.ClaimExpiringWarning)
	slog.Info(LogMsgServicesInitialized)

	return svcs, nil
}
