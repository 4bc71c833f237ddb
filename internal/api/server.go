package api

import (
	"context"
	"net/http"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// BasePath is the prefix of every exposure endpoint.
const BasePath = "/api/v1/exposure"

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 10 * time.Second

// Config holds HTTP server settings.
type Config struct {
	Listen          string
	RateLimit       float64 // requests per second per client, 0 disables
	Burst           int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wires the controller, middleware and metrics endpoint into echo.
type Server struct {
	echo       *echo.Echo
	config     Config
	controller *Controller
	metrics    *observability.Metrics
	log        logger.Logger
}

// NewServer builds the echo instance. metrics may be nil, in which case
// /metrics is not served and requests are not recorded.
func NewServer(config Config, controller *Controller, metrics *observability.Metrics) *Server {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		echo:       echo.New(),
		config:     config,
		controller: controller,
		metrics:    metrics,
		log:        getLogger(),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	s.echo.Use(traceContext())
	s.echo.Use(requestLogger(s.log))
	if s.metrics != nil {
		s.echo.Use(metricsMiddleware(s.metrics.HTTP))
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.controller.HealthCheck)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	var groupMiddleware []echo.MiddlewareFunc
	if s.config.RateLimit > 0 {
		groupMiddleware = append(groupMiddleware, rateLimiter(s.config.RateLimit, s.config.Burst))
	}
	s.controller.RegisterRoutes(s.echo.Group(BasePath, groupMiddleware...))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.echo.Start(s.config.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("HTTP server started", logger.String("address", s.config.Listen))

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return errors.New(err).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("address", s.config.Listen).
			Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down HTTP server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("operation", "shutdown").
			Build()
	}

	// Start has returned once Shutdown completes
	<-errCh
	return nil
}
