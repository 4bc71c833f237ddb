// config.go: settings struct for the exposure service and functions to load it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// configFileName is the base name searched for in every config path.
const configFileName = "config"

// DatabaseSettings selects the storage backend.
type DatabaseSettings struct {
	Type               string        // sqlite or mysql
	AutoMigrate        bool          // create and update tables on startup
	SlowQueryThreshold time.Duration // queries slower than this are logged at warn
	SQLite             struct {
		Path string // database file, ":memory:" for a private in-memory database
	}
	MySQL struct {
		Host     string
		Port     int
		Username string
		Password string
		Database string
	}
}

// LimitSettings holds the exposure limit of each period type.
type LimitSettings struct {
	Daily   float64
	Weekly  float64
	Monthly float64
}

// ExposureSettings holds the scoring policy of the aggregation engine.
type ExposureSettings struct {
	CategoryWeights    map[string]float64 `mapstructure:"category_weights" yaml:"category_weights"`
	DefaultWeight      float64            `mapstructure:"default_weight" yaml:"default_weight"`
	Limits             LimitSettings
	ApproachingPercent float64       `mapstructure:"approaching_percent" yaml:"approaching_percent"`
	ExceedsPercent     float64       `mapstructure:"exceeds_percent" yaml:"exceeds_percent"`
	TrendPeriods       int           `mapstructure:"trend_periods" yaml:"trend_periods"`
	TrendCacheTTL      time.Duration `mapstructure:"trend_cache_ttl" yaml:"trend_cache_ttl"` // 0 disables memoization; cached windows miss scans written by other processes until they expire
}

// AlertSettings holds the alert detector thresholds.
type AlertSettings struct {
	WarningPercent        float64       `mapstructure:"warning_percent" yaml:"warning_percent"`
	CriticalPercent       float64       `mapstructure:"critical_percent" yaml:"critical_percent"`
	TrendIncreasePercent  float64       `mapstructure:"trend_increase_percent" yaml:"trend_increase_percent"`
	HighEDCPercent        float64       `mapstructure:"high_edc_percent" yaml:"high_edc_percent"`
	CriticalSourcePercent float64       `mapstructure:"critical_source_percent" yaml:"critical_source_percent"`
	Cooldown              time.Duration // 0 disables duplicate suppression
}

// APISettings contains settings for the HTTP API.
type APISettings struct {
	Listen       string        // host:port to listen on
	RateLimit    float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second per client, 0 disables
	Burst        int           // rate limiter burst size
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// SentrySettings contains settings for error telemetry.
type SentrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
}

// Settings contains all configuration options for the service.
type Settings struct {
	Debug    bool                 // true to enable debug mode
	Logging  logger.LoggingConfig // console and file logging
	Database DatabaseSettings     // storage backend
	Exposure ExposureSettings     // aggregation policy
	Alerts   AlertSettings        // alert thresholds
	API      APISettings          // HTTP API
	Sentry   SentrySettings       // error telemetry

	// ConfigFile is the file the settings were read from, runtime value
	ConfigFile string `yaml:"-" mapstructure:"-"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and makes it the current one. An empty configPath
// searches the default config paths and writes the embedded default file to
// the first of them when none exists.
func Load(configPath string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v := viper.New()
	if err := initViper(v, configPath); err != nil {
		return nil, err
	}

	settings := new(Settings)
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("config_file", v.ConfigFileUsed()).
			Build()
	}
	settings.ConfigFile = v.ConfigFileUsed()

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets defaults, binds environment variables and reads the config file.
func initViper(v *viper.Viper, configPath string) error {
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	if err := configureEnvironmentVariables(v); err != nil {
		// invalid env values are reported and left to ValidateSettings
		GetLogger().Warn("environment variable configuration issues", logger.Error(err))
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := createDefaultConfig(configPath); err != nil {
				return err
			}
		}
		v.SetConfigFile(configPath)
		return readConfig(v)
	}

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}

	v.SetConfigName(configFileName)
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	err = v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return configReadError(err, "")
	}

	defaultPath := filepath.Join(configPaths[0], configFileName+".yaml")
	if err := createDefaultConfig(defaultPath); err != nil {
		return err
	}
	v.SetConfigFile(defaultPath)
	return readConfig(v)
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		return configReadError(err, v.ConfigFileUsed())
	}
	return nil
}

func configReadError(err error, path string) error {
	return errors.New(fmt.Errorf("error reading config file: %w", err)).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("config_file", path).
		Build()
}

// createDefaultConfig writes the embedded default configuration to path.
func createDefaultConfig(path string) error {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.New(fmt.Errorf("error creating config directory: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", filepath.Dir(path)).
			Build()
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.New(fmt.Errorf("error writing default config: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	GetLogger().Info("created default config file", logger.String("path", path))
	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml, in
// order of precedence.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(fmt.Errorf("error fetching user home directory: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "edc-exposure"),
		"/etc/edc-exposure",
	}, nil
}

// GetSettings returns the current settings instance, nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
