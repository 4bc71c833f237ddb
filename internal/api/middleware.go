package api

import (
	"net/http"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// rateLimitWindow is how long an idle client's limiter is kept.
const rateLimitWindow = 3 * time.Minute

// requestLogger logs one line per request through the module logger.
func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.String("ip", v.RemoteIP),
				logger.String("request_id", v.RequestID),
				logger.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			log.WithContext(c.Request().Context()).Debug("request", fields...)
			return nil
		},
	})
}

// traceContext stores the request id as the trace id of the request context
// so engine logs can be correlated with the access log.
func traceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

// metricsMiddleware records request counts and latency by route template.
func metricsMiddleware(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}

// rateLimiter limits requests per client IP.
func rateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSecond),
				Burst:     burst,
				ExpiresIn: rateLimitWindow,
			},
		),
		IdentifierExtractor: middleware.DefaultRateLimiterConfig.IdentifierExtractor,
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusForbidden, map[string]string{
				"error": "Unable to identify client for rate limiting",
			})
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please wait before trying again",
			})
		},
	})
}
