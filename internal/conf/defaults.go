// defaults.go: default values for every configuration key
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the built-in defaults so that a partial config
// file still yields a complete Settings.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	// Logging
	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "UTC")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/edc-exposure.log")
	v.SetDefault("logging.file_output.level", "info")

	// Database
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.automigrate", true)
	v.SetDefault("database.slowquerythreshold", 200*time.Millisecond)
	v.SetDefault("database.sqlite.path", "edc-exposure.db")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "edc_exposure")

	// Exposure policy
	v.SetDefault("exposure.category_weights", map[string]any{
		"cosmetic":      1.0,
		"personal_care": 1.5,
		"food":          2.0,
		"household":     0.3,
	})
	v.SetDefault("exposure.default_weight", 0.5)
	v.SetDefault("exposure.limits.daily", 10.0)
	v.SetDefault("exposure.limits.weekly", 50.0)
	v.SetDefault("exposure.limits.monthly", 200.0)
	v.SetDefault("exposure.approaching_percent", 70.0)
	v.SetDefault("exposure.exceeds_percent", 100.0)
	v.SetDefault("exposure.trend_periods", 6)
	v.SetDefault("exposure.trend_cache_ttl", time.Duration(0))

	// Alerts
	v.SetDefault("alerts.warning_percent", 70.0)
	v.SetDefault("alerts.critical_percent", 100.0)
	v.SetDefault("alerts.trend_increase_percent", 20.0)
	v.SetDefault("alerts.high_edc_percent", 30.0)
	v.SetDefault("alerts.critical_source_percent", 40.0)
	v.SetDefault("alerts.cooldown", time.Duration(0))

	// HTTP API
	v.SetDefault("api.listen", "127.0.0.1:8080")
	v.SetDefault("api.rate_limit", 20.0)
	v.SetDefault("api.burst", 40)
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)

	// Sentry
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}
