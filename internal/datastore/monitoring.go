package datastore

import (
	"context"
	"time"

	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
)

// DefaultMonitorInterval is used when Monitor is given a non-positive interval.
const DefaultMonitorInterval = time.Minute

// Monitor pings the database and samples connection pool statistics every
// interval until ctx is cancelled. m may be nil. Ping failures are logged and
// counted but never stop the loop.
func (s *Store) Monitor(ctx context.Context, interval time.Duration, m *metrics.DatabaseMetrics) error {
	if s == nil || s.DB == nil {
		return ErrNotInitialized
	}
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			healthy = s.sample(ctx, m, healthy)
		}
	}
}

// sample runs one health check and returns the new health state. State
// changes are logged at warn and info, steady state at debug.
func (s *Store) sample(ctx context.Context, m *metrics.DatabaseMetrics, wasHealthy bool) bool {
	log := getLogger()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := s.Ping(pingCtx)
	cancel()
	m.RecordHealthCheck(err)

	if err != nil {
		if wasHealthy {
			log.Warn("database health check failed",
				logger.String("dialect", s.Dialect),
				logger.Error(err))
		}
		return false
	}
	if !wasHealthy {
		log.Info("database connection recovered", logger.String("dialect", s.Dialect))
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return true
	}
	stats := sqlDB.Stats()
	m.UpdateConnections(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount)

	log.Debug("connection pool statistics",
		logger.Int("open_connections", stats.OpenConnections),
		logger.Int("in_use", stats.InUse),
		logger.Int("idle", stats.Idle),
		logger.Int64("wait_count", stats.WaitCount),
		logger.Duration("wait_duration", stats.WaitDuration))

	if stats.WaitCount > 0 && stats.InUse >= stats.MaxOpenConnections && stats.MaxOpenConnections > 0 {
		log.Warn("connection pool exhausted",
			logger.Int("max_open", stats.MaxOpenConnections),
			logger.Int64("wait_count", stats.WaitCount))
	}
	return true
}
