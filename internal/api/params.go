package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/labstack/echo/v4"
)

// Query defaults for the exposure endpoints.
const (
	defaultPeriodType = exposure.PeriodMonthly
	defaultDays       = 30
	defaultAlertLimit = 10
)

// periodParam parses period_type, falling back to the default when absent.
func periodParam(ctx echo.Context) (exposure.PeriodType, error) {
	raw := ctx.QueryParam("period_type")
	if raw == "" {
		return defaultPeriodType, nil
	}
	return exposure.ParsePeriodType(raw)
}

// timeParam parses an optional ISO 8601 date or date-time query parameter.
func timeParam(ctx echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	return exposure.ParseTime(name, raw)
}

// intParam parses an optional integer query parameter. Range checks are left
// to the engines.
func intParam(ctx echo.Context, name string, def int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ValidationError(name, name+" must be an integer")
	}
	return v, nil
}

// boolParam parses an optional boolean query parameter.
func boolParam(ctx echo.Context, name string) (bool, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.ValidationError(name, name+" must be true or false")
	}
	return v, nil
}

// alertIDParam parses the :id path parameter.
func alertIDParam(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ValidationError("alert_id", "alert id must be a positive integer")
	}
	return uint(id), nil
}
