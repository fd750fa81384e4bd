package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// ExpectedEnvSchemaVersion is the ENV_SCHEMA_VERSION this build understands
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars must be non-empty for the server to start
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
	"API_KEY",
	"JWT_SECRET",
}

// minuteVars hold whole positive minute counts when set
var minuteVars = []string{
	"CLAIM_DURATION_GUILD_MINUTES",
	"CLAIM_DURATION_NEUTRO_MINUTES",
	"PRIORITY_WINDOW_MINUTES",
	"CLAIM_EXPIRING_WARNING_MINUTES",
}

// Example values shipped in .env.example
const (
	exampleDBPassword = "change_this_secure_password"
	exampleAPIKey     = "generate_with_openssl_rand_hex_32"
)

// ValidateEnv fails on an outdated .env, a missing required variable, or a
// malformed claim timing or purge schedule. All problems are reported at once.
func ValidateEnv() error {
	switch v := os.Getenv("ENV_SCHEMA_VERSION"); {
	case v == "":
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - add it to your .env file (expected: %s)", ExpectedEnvSchemaVersion)
	case v != ExpectedEnvSchemaVersion:
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, v)
	}

	var errs []error

	var missing []string
	for _, key := range RequiredEnvVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}

	for _, key := range minuteVars {
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a whole number of minutes above zero, got %q", key, raw))
		}
	}

	if spec := os.Getenv("NOTIFICATION_PURGE_SCHEDULE"); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("NOTIFICATION_PURGE_SCHEDULE %q: %w", spec, err))
		}
	}

	return errors.Join(errs...)
}

// ValidateEnvWithWarnings runs ValidateEnv and then lists settings that
// work but should not reach production
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string
	warn := func(cond bool, msg string) {
		if cond {
			warnings = append(warnings, msg)
		}
	}

	warn(os.Getenv("DB_PASSWORD") == exampleDBPassword,
		"DB_PASSWORD appears to be using the example value - please use a secure password")
	warn(os.Getenv("API_KEY") == exampleAPIKey,
		"API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	warn(len(os.Getenv("JWT_SECRET")) < MinJWTSecretLength,
		fmt.Sprintf("JWT_SECRET is shorter than %d characters - user tokens are easy to forge", MinJWTSecretLength))
	warn(os.Getenv("ENVIRONMENT") == "production" && os.Getenv("ALLOWED_ORIGINS") == "",
		"ALLOWED_ORIGINS is not set - WebSocket feed clients from other origins will be rejected")

	return warnings, nil
}
