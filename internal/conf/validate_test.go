package conf

import (
	"testing"
	"time"

	"github.com/edctrack/exposure/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings mirrors the embedded defaults.
func validSettings() *Settings {
	s := &Settings{
		Logging: logger.LoggingConfig{
			DefaultLevel: "info",
			Console:      &logger.ConsoleOutput{Enabled: true, Level: "info"},
		},
		Exposure: ExposureSettings{
			CategoryWeights:    map[string]float64{"food": 2.0},
			DefaultWeight:      0.5,
			Limits:             LimitSettings{Daily: 10, Weekly: 50, Monthly: 200},
			ApproachingPercent: 70,
			ExceedsPercent:     100,
			TrendPeriods:       6,
		},
		Alerts: AlertSettings{
			WarningPercent:        70,
			CriticalPercent:       100,
			TrendIncreasePercent:  20,
			HighEDCPercent:        30,
			CriticalSourcePercent: 40,
		},
		API: APISettings{Listen: "127.0.0.1:8080", RateLimit: 20, Burst: 40},
	}
	s.Database.Type = "sqlite"
	s.Database.SQLite.Path = "edc.db"
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"valid defaults", func(*Settings) {}, ""},
		{"unknown log level", func(s *Settings) { s.Logging.DefaultLevel = "loud" }, `logging.default_level: unknown log level "loud"`},
		{"module log level", func(s *Settings) {
			s.Logging.ModuleLevels = map[string]string{"alerting": "verbose"}
		}, `logging.module_levels.alerting: unknown log level "verbose"`},
		{"file output without path", func(s *Settings) {
			s.Logging.FileOutput = &logger.FileOutput{Enabled: true}
		}, "logging.file_output.path is required when file output is enabled"},
		{"sqlite without path", func(s *Settings) { s.Database.SQLite.Path = "" }, "database.sqlite.path is required for sqlite"},
		{"mysql without host", func(s *Settings) {
			s.Database.Type = "mysql"
			s.Database.MySQL.Database = "edc"
			s.Database.MySQL.Port = 3306
		}, "database.mysql.host is required for mysql"},
		{"mysql bad port", func(s *Settings) {
			s.Database.Type = "mysql"
			s.Database.MySQL.Host = "db"
			s.Database.MySQL.Database = "edc"
		}, "database.mysql.port 0 is out of range"},
		{"bad listen address", func(s *Settings) { s.API.Listen = "8080" }, `api.listen "8080" is not a valid host:port address`},
		{"rate limit without burst", func(s *Settings) { s.API.Burst = 0 }, "api.burst must be at least 1 when rate limiting is enabled"},
		{"rate limiting disabled", func(s *Settings) { s.API.RateLimit = 0; s.API.Burst = 0 }, ""},
		{"sentry without dsn", func(s *Settings) { s.Sentry.Enabled = true }, "sentry.dsn is required when sentry is enabled"},
		{"negative cache ttl", func(s *Settings) { s.Exposure.TrendCacheTTL = -time.Second }, "exposure.trend_cache_ttl must not be negative"},
		{"trend periods too many", func(s *Settings) { s.Exposure.TrendPeriods = 13 }, "trend periods must be between 1 and 12"},
		{"inverted status thresholds", func(s *Settings) { s.Exposure.ApproachingPercent = 120 }, "approaching percent must be positive and below exceeds percent"},
		{"negative cooldown", func(s *Settings) { s.Alerts.Cooldown = -time.Minute }, "cooldown must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Errors, tt.wantErr)
		})
	}
}

func TestValidateSettingsReportsEveryProblem(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Database.Type = "oracle"
	s.API.Listen = ""
	s.Exposure.Limits.Daily = -1
	s.Alerts.WarningPercent = 0

	err := ValidateSettings(s)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 4)
	assert.Contains(t, err.Error(), "Validation errors:")
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func(string) error
		value    string
		wantErr  bool
	}{
		{"bool ok", validateEnvBool, "true", false},
		{"bool bad", validateEnvBool, "yes please", true},
		{"level ok", validateEnvLogLevel, "DEBUG", false},
		{"level bad", validateEnvLogLevel, "chatty", true},
		{"database mysql", validateEnvDatabaseType, "MySQL", false},
		{"database unknown", validateEnvDatabaseType, "postgres", true},
		{"port ok", validateEnvPort, "3306", false},
		{"port range", validateEnvPort, "70000", true},
		{"duration ok", validateEnvDuration, "24h", false},
		{"duration negative", validateEnvDuration, "-1h", true},
		{"duration garbage", validateEnvDuration, "soon", true},
		{"float ok", validateEnvNonNegativeFloat, "2.5", false},
		{"float negative", validateEnvNonNegativeFloat, "-2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
