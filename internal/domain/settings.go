package domain

import "time"

// Default claim timings, overridable through system settings
const (
	DefaultGuildClaimDuration  = 150 * time.Minute
	DefaultNeutroClaimDuration = 90 * time.Minute
	DefaultPriorityWindow      = 5 * time.Minute
)

// System setting keys
const (
	SettingClaimDurationGuildMinutes  = "claim_duration_guild_minutes"
	SettingClaimDurationNeutroMinutes = "claim_duration_neutro_minutes"
	SettingPriorityWindowMinutes      = "priority_window_minutes"
)

// ClaimSettings holds the timings used by the coordinator
type ClaimSettings struct {
	GuildDuration  time.Duration `json:"guild_duration"`
	NeutroDuration time.Duration `json:"neutro_duration"`
	PriorityWindow time.Duration `json:"priority_window"`
}

// DefaultClaimSettings returns the built-in timings
func DefaultClaimSettings() ClaimSettings {
	return ClaimSettings{
		GuildDuration:  DefaultGuildClaimDuration,
		NeutroDuration: DefaultNeutroClaimDuration,
		PriorityWindow: DefaultPriorityWindow,
	}
}

// DurationFor returns the claim duration for a role tier.
// Unknown tiers get the shorter neutro duration.
func (s ClaimSettings) DurationFor(tier RoleTier) time.Duration {
	if tier == RoleTierGuild {
		return s.GuildDuration
	}
	return s.NeutroDuration
}
