// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edctrack/exposure/internal/logger"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every automatically bound config key.
const envPrefix = "EDC"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all explicitly bound environment variables with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "EDC_DEBUG", validateEnvBool},
		{"logging.default_level", "EDC_LOG_LEVEL", validateEnvLogLevel},

		// Database
		{"database.type", "EDC_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "EDC_DATABASE_SQLITE_PATH", nil},
		{"database.mysql.host", "EDC_DATABASE_MYSQL_HOST", nil},
		{"database.mysql.port", "EDC_DATABASE_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "EDC_DATABASE_MYSQL_USERNAME", nil},
		{"database.mysql.password", "EDC_DATABASE_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "EDC_DATABASE_MYSQL_DATABASE", nil},

		// Alerts
		{"alerts.cooldown", "EDC_ALERTS_COOLDOWN", validateEnvDuration},

		// HTTP API
		{"api.listen", "EDC_API_LISTEN", nil},
		{"api.rate_limit", "EDC_API_RATE_LIMIT", validateEnvNonNegativeFloat},

		// Sentry
		{"sentry.enabled", "EDC_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "EDC_SENTRY_DSN", nil},
	}
}

// configureEnvironmentVariables enables EDC_ prefixed overrides for every key
// and binds the explicit variables above.
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return bindEnvVars(v)
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !logger.ValidLevel(strings.ToLower(value)) {
		return fmt.Errorf("must be one of trace, debug, info, warn, error")
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch strings.ToLower(value) {
	case "sqlite", "mysql":
		return nil
	default:
		return fmt.Errorf("must be sqlite or mysql")
	}
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("must be a duration such as 24h: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
