// Package datastore persists product scans, exposure report snapshots and
// exposure alerts with GORM on SQLite or MySQL.
package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"gorm.io/gorm"
)

// Dialect names accepted by Config.Type.
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// Config selects and parameterizes the database backend.
type Config struct {
	Type               string
	SQLitePath         string
	MySQL              MySQLConfig
	SlowQueryThreshold time.Duration
	AutoMigrate        bool
}

// MySQLConfig holds MySQL connection parameters.
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// DSN builds the go-sql-driver DSN for this configuration.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// Store bundles the database handle with the repositories built on it.
type Store struct {
	DB      *gorm.DB
	Dialect string
	Scans   ScanRepository
	Reports ReportRepository
	Alerts  AlertRepository
}

// Open connects to the configured database, runs migrations when enabled
// and wires the repositories.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	gormCfg := &gorm.Config{
		Logger:  logger.NewGormLoggerAdapter(getLogger().Module("sql"), cfg.SlowQueryThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case DialectSQLite, "":
		db, err = openSQLite(cfg.SQLitePath, gormCfg)
		cfg.Type = DialectSQLite
	case DialectMySQL:
		db, err = openMySQL(cfg.MySQL, gormCfg)
	default:
		return nil, validationError(fmt.Sprintf("unsupported database type %q", cfg.Type), "database.type", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	store := NewStore(db, cfg.Type)
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	getLogger().Info("database opened",
		logger.String("dialect", cfg.Type),
		logger.Bool("auto_migrate", cfg.AutoMigrate))

	return store, nil
}

// NewStore wires repositories on an existing connection.
func NewStore(db *gorm.DB, dialect string) *Store {
	return &Store{
		DB:      db,
		Dialect: dialect,
		Scans:   NewScanRepository(db),
		Reports: NewReportRepository(db),
		Alerts:  NewAlertRepository(db),
	}
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNotInitialized
	}

	start := time.Now()
	if err := s.DB.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return dbError(err, "auto_migrate", errors.PriorityCritical, "dialect", s.Dialect)
	}

	getLogger().Debug("schema migrated",
		logger.String("dialect", s.Dialect),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// Ping verifies the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNotInitialized
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return connectionError(err, s.Dialect, "get_sql_db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return connectionError(err, s.Dialect, "ping")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return connectionError(err, s.Dialect, "get_sql_db")
	}
	if err := sqlDB.Close(); err != nil {
		return connectionError(err, s.Dialect, "close")
	}
	return nil
}
