package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edctrack/exposure/internal/exposure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to config.yaml in a fresh temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	settings, err := Load(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "default config should be written on first run")
	assert.Equal(t, path, settings.ConfigFile)
	assert.Same(t, settings, GetSettings())

	assert.Equal(t, "sqlite", settings.Database.Type)
	assert.Equal(t, "edc-exposure.db", settings.Database.SQLite.Path)
	assert.Equal(t, 200*time.Millisecond, settings.Database.SlowQueryThreshold)
	assert.True(t, settings.Database.AutoMigrate)

	assert.InDelta(t, 2.0, settings.Exposure.CategoryWeights["food"], 1e-9)
	assert.InDelta(t, 1.5, settings.Exposure.CategoryWeights["personal_care"], 1e-9)
	assert.InDelta(t, 0.5, settings.Exposure.DefaultWeight, 1e-9)
	assert.InDelta(t, 50.0, settings.Exposure.Limits.Weekly, 1e-9)
	assert.Equal(t, 6, settings.Exposure.TrendPeriods)
	assert.Zero(t, settings.Exposure.TrendCacheTTL)

	assert.InDelta(t, 30.0, settings.Alerts.HighEDCPercent, 1e-9)
	assert.Zero(t, settings.Alerts.Cooldown)

	assert.Equal(t, "127.0.0.1:8080", settings.API.Listen)
	assert.Equal(t, 40, settings.API.Burst)
	assert.False(t, settings.Sentry.Enabled)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
}

func TestLoadReadsFileOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  sqlite:
    path: /tmp/scans.db
exposure:
  limits:
    weekly: 80
  trend_periods: 4
  trend_cache_ttl: 5m
alerts:
  cooldown: 24h
api:
  listen: 0.0.0.0:9090
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/scans.db", settings.Database.SQLite.Path)
	assert.InDelta(t, 80.0, settings.Exposure.Limits.Weekly, 1e-9)
	assert.InDelta(t, 10.0, settings.Exposure.Limits.Daily, 1e-9, "unset keys keep their defaults")
	assert.Equal(t, 4, settings.Exposure.TrendPeriods)
	assert.Equal(t, 5*time.Minute, settings.Exposure.TrendCacheTTL)
	assert.Equal(t, 24*time.Hour, settings.Alerts.Cooldown)
	assert.Equal(t, "0.0.0.0:9090", settings.API.Listen)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("EDC_ALERTS_COOLDOWN", "2h")
	t.Setenv("EDC_EXPOSURE_LIMITS_WEEKLY", "75")
	t.Setenv("EDC_API_LISTEN", "localhost:7000")

	settings, err := Load(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, settings.Alerts.Cooldown)
	assert.InDelta(t, 75.0, settings.Exposure.Limits.Weekly, 1e-9)
	assert.Equal(t, "localhost:7000", settings.API.Listen)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
exposure:
  limits:
    weekly: 0
alerts:
  high_edc_percent: 120
`)

	settings, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, settings)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors, `database.type must be sqlite or mysql, got "postgres"`)
	assert.Contains(t, ve.Errors, "weekly limit must be positive")
	assert.Contains(t, ve.Errors, "high EDC percent must be in (0, 100], got 120")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "exposure: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSettingsBuildEnginePolicies(t *testing.T) {
	path := writeConfig(t, `
debug: true
exposure:
  category_weights:
    Toys: 0.8
alerts:
  cooldown: 1h
database:
  type: MySQL
  mysql:
    host: db.internal
    username: edc
    password: secret
`)

	settings, err := Load(path)
	require.NoError(t, err)

	policy, err := settings.ExposurePolicy()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, policy.CategoryWeight("toys"), 1e-9)
	assert.InDelta(t, 0.5, policy.CategoryWeight("garden"), 1e-9)
	assert.InDelta(t, 200.0, policy.Limit(exposure.PeriodMonthly), 1e-9)

	thresholds := settings.AlertThresholds()
	require.NoError(t, thresholds.Validate())
	assert.Equal(t, time.Hour, thresholds.Cooldown)
	assert.InDelta(t, 40.0, thresholds.CriticalSourcePercent, 1e-9)

	dbCfg := settings.DatastoreConfig()
	assert.Equal(t, "mysql", dbCfg.Type)
	assert.Equal(t, "db.internal", dbCfg.MySQL.Host)
	assert.Equal(t, 3306, dbCfg.MySQL.Port)
	assert.Equal(t, "edc_exposure", dbCfg.MySQL.Database)

	logCfg := settings.LoggingConfig()
	assert.Equal(t, "debug", logCfg.DefaultLevel)
	require.NotNil(t, logCfg.Console)
	assert.Equal(t, "debug", logCfg.Console.Level)
	assert.Equal(t, "info", settings.Logging.Console.Level, "settings must not be mutated")
}
