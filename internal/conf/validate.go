// validate.go: validation of loaded settings
package conf

import (
	"fmt"
	"net"
	"strings"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings checks every section and reports all problems at once.
// Problems found by the engine policies themselves are included verbatim.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateLoggingSettings(&settings.Logging)...)
	ve.Errors = append(ve.Errors, validateDatabaseSettings(&settings.Database)...)
	ve.Errors = append(ve.Errors, validateAPISettings(&settings.API)...)
	ve.Errors = append(ve.Errors, validateSentrySettings(&settings.Sentry)...)

	if settings.Exposure.TrendCacheTTL < 0 {
		ve.Errors = append(ve.Errors, "exposure.trend_cache_ttl must not be negative")
	}
	if err := settings.ExposurePolicyConfig().Validate(); err != nil {
		ve.Errors = append(ve.Errors, problemsOf(err)...)
	}
	if err := settings.AlertThresholds().Validate(); err != nil {
		ve.Errors = append(ve.Errors, problemsOf(err)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateLoggingSettings(cfg *logger.LoggingConfig) []string {
	var errs []string
	check := func(key, level string) {
		if level != "" && !logger.ValidLevel(strings.ToLower(level)) {
			errs = append(errs, fmt.Sprintf("%s: unknown log level %q", key, level))
		}
	}

	check("logging.default_level", cfg.DefaultLevel)
	if cfg.Console != nil {
		check("logging.console.level", cfg.Console.Level)
	}
	if cfg.FileOutput != nil {
		check("logging.file_output.level", cfg.FileOutput.Level)
		if cfg.FileOutput.Enabled && cfg.FileOutput.Path == "" {
			errs = append(errs, "logging.file_output.path is required when file output is enabled")
		}
	}
	for module, level := range cfg.ModuleLevels {
		check("logging.module_levels."+module, level)
	}
	return errs
}

func validateDatabaseSettings(cfg *DatabaseSettings) []string {
	var errs []string
	switch strings.ToLower(cfg.Type) {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, "database.sqlite.path is required for sqlite")
		}
	case "mysql":
		if cfg.MySQL.Host == "" {
			errs = append(errs, "database.mysql.host is required for mysql")
		}
		if cfg.MySQL.Database == "" {
			errs = append(errs, "database.mysql.database is required for mysql")
		}
		if cfg.MySQL.Port < 1 || cfg.MySQL.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.mysql.port %d is out of range", cfg.MySQL.Port))
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type must be sqlite or mysql, got %q", cfg.Type))
	}
	if cfg.SlowQueryThreshold < 0 {
		errs = append(errs, "database.slowquerythreshold must not be negative")
	}
	return errs
}

func validateAPISettings(cfg *APISettings) []string {
	var errs []string
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		errs = append(errs, fmt.Sprintf("api.listen %q is not a valid host:port address", cfg.Listen))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, "api.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		errs = append(errs, "api.burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		errs = append(errs, "api timeouts must not be negative")
	}
	return errs
}

func validateSentrySettings(cfg *SentrySettings) []string {
	if cfg.Enabled && cfg.DSN == "" {
		return []string{"sentry.dsn is required when sentry is enabled"}
	}
	return nil
}

// problemsOf extracts the individual problems from a policy validation error.
func problemsOf(err error) []string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		if problems, ok := ee.GetContext()["problems"].([]string); ok {
			return problems
		}
	}
	return []string{err.Error()}
}
