package conf

import (
	"strings"

	"github.com/edctrack/exposure/internal/alerting"
	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
)

// ExposurePolicyConfig maps the exposure section onto the engine policy config.
func (s *Settings) ExposurePolicyConfig() exposure.PolicyConfig {
	return exposure.PolicyConfig{
		CategoryWeights: s.Exposure.CategoryWeights,
		DefaultWeight:   s.Exposure.DefaultWeight,
		Limits: map[exposure.PeriodType]float64{
			exposure.PeriodDaily:   s.Exposure.Limits.Daily,
			exposure.PeriodWeekly:  s.Exposure.Limits.Weekly,
			exposure.PeriodMonthly: s.Exposure.Limits.Monthly,
		},
		ApproachingPercent: s.Exposure.ApproachingPercent,
		ExceedsPercent:     s.Exposure.ExceedsPercent,
		TrendPeriods:       s.Exposure.TrendPeriods,
	}
}

// ExposurePolicy builds the immutable scoring policy.
func (s *Settings) ExposurePolicy() (*exposure.Policy, error) {
	return exposure.NewPolicy(s.ExposurePolicyConfig())
}

// AlertThresholds maps the alerts section onto detector thresholds.
func (s *Settings) AlertThresholds() alerting.Thresholds {
	return alerting.Thresholds{
		WarningPercent:        s.Alerts.WarningPercent,
		CriticalPercent:       s.Alerts.CriticalPercent,
		TrendIncreasePercent:  s.Alerts.TrendIncreasePercent,
		HighEDCPercent:        s.Alerts.HighEDCPercent,
		CriticalSourcePercent: s.Alerts.CriticalSourcePercent,
		Cooldown:              s.Alerts.Cooldown,
	}
}

// DatastoreConfig maps the database section onto the store config.
func (s *Settings) DatastoreConfig() datastore.Config {
	return datastore.Config{
		Type:       strings.ToLower(s.Database.Type),
		SQLitePath: s.Database.SQLite.Path,
		MySQL: datastore.MySQLConfig{
			Host:     s.Database.MySQL.Host,
			Port:     s.Database.MySQL.Port,
			Username: s.Database.MySQL.Username,
			Password: s.Database.MySQL.Password,
			Database: s.Database.MySQL.Database,
		},
		SlowQueryThreshold: s.Database.SlowQueryThreshold,
		AutoMigrate:        s.Database.AutoMigrate,
	}
}

// LoggingConfig returns the logging section with debug mode applied.
func (s *Settings) LoggingConfig() *logger.LoggingConfig {
	cfg := s.Logging
	if s.Debug {
		cfg.DefaultLevel = string(logger.LogLevelDebug)
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = cfg.DefaultLevel
			cfg.Console = &console
		}
	}
	return &cfg
}
