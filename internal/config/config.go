package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	Version     string

	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	APIKey         string // API key for service-to-service authentication
	JWTSecret      string
	JWTTTL         time.Duration
	TrustedProxies []string
	AllowedOrigins []string // WebSocket feed origins; empty allows same-host only

	// Claim timings; system_settings rows override these at runtime
	ClaimDurationGuild  time.Duration
	ClaimDurationNeutro time.Duration
	PriorityWindow      time.Duration

	ClaimExpiringWarning      time.Duration
	HousekeepingInterval      time.Duration
	NotificationPurgeSchedule string
	NotificationRetention     time.Duration
	NotificationTTL           time.Duration

	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", ""),
		LogFormat:   getEnv("LOG_FORMAT", ""),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		Version:     getEnv("VERSION", DefaultVersion),

		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", DefaultDBName),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		APIKey:         getEnv("API_KEY", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         getEnvAsDuration("JWT_TTL", DefaultJWTTTL),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),

		ClaimDurationGuild:  getEnvAsMinutes("CLAIM_DURATION_GUILD_MINUTES", DefaultClaimDurationGuildMinutes),
		ClaimDurationNeutro: getEnvAsMinutes("CLAIM_DURATION_NEUTRO_MINUTES", DefaultClaimDurationNeutroMinutes),
		PriorityWindow:      getEnvAsMinutes("PRIORITY_WINDOW_MINUTES", DefaultPriorityWindowMinutes),

		ClaimExpiringWarning:      getEnvAsMinutes("CLAIM_EXPIRING_WARNING_MINUTES", DefaultClaimExpiringWarningMinutes),
		HousekeepingInterval:      getEnvAsDuration("HOUSEKEEPING_INTERVAL", DefaultHousekeepingInterval),
		NotificationPurgeSchedule: getEnv("NOTIFICATION_PURGE_SCHEDULE", DefaultNotificationPurgeSchedule),
		NotificationRetention:     getEnvAsDuration("NOTIFICATION_RETENTION", DefaultNotificationRetention),
		NotificationTTL:           getEnvAsDuration("NOTIFICATION_TTL", DefaultNotificationTTL),

		EventMaxRetries:     getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay:     getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		EventDeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", DefaultEventDeadLetterPath),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set for security")
	}

	return cfg, nil
}

// ClientConfig holds the sync daemon configuration
type ClientConfig struct {
	APIURL       string
	APIKey       string
	UserToken    string
	PollInterval time.Duration
	DedupWindow  time.Duration
	LogLevel     string
	LogFormat    string

	DiscordToken          string
	DiscordAlertChannelID string
}

// LoadClient loads the sync daemon configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		APIURL:       strings.TrimRight(getEnv("RESPAWN_API_URL", DefaultAPIURL), "/"),
		APIKey:       getEnv("API_KEY", ""),
		UserToken:    getEnv("RESPAWN_USER_TOKEN", ""),
		PollInterval: getEnvAsDuration("POLL_INTERVAL", DefaultPollInterval),
		DedupWindow:  getEnvAsDuration("DEDUP_WINDOW", DefaultDedupWindow),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:    getEnv("LOG_FORMAT", DefaultLogFormat),

		DiscordToken:          getEnv("DISCORD_TOKEN", ""),
		DiscordAlertChannelID: getEnv("DISCORD_ALERT_CHANNEL_ID", ""),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if cfg.UserToken == "" {
		return nil, fmt.Errorf("RESPAWN_USER_TOKEN environment variable must be set")
	}
	if cfg.DiscordToken != "" && cfg.DiscordAlertChannelID == "" {
		return nil, fmt.Errorf("DISCORD_ALERT_CHANNEL_ID must be set when DISCORD_TOKEN is set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the integer value of key, or the default when unset or malformed
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a Go duration string ("30s", "1h30m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsMinutes reads a whole number of minutes
func getEnvAsMinutes(key string, defaultMinutes int) time.Duration {
	minutes := getEnvAsInt(key, defaultMinutes)
	if minutes <= 0 {
		minutes = defaultMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProduction reports whether the service runs in a production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// AddSource reports whether log records should carry source locations
func (c *Config) AddSource() bool {
	return getEnvAsBool("LOG_ADD_SOURCE", !c.IsProduction())
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
