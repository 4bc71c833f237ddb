package datastore

import (
	"fmt"
	"strings"

	"github.com/edctrack/exposure/internal/errors"
	"gorm.io/gorm"
)

// Sentinel errors for repository operations. Returned errors wrap these, so
// callers can test with errors.Is as well as errors.IsNotFound.
var (
	// ErrAlertNotFound indicates the requested alert does not exist.
	ErrAlertNotFound = errors.NewStd("alert not found")

	// ErrReportNotFound indicates the requested report snapshot does not exist.
	ErrReportNotFound = errors.NewStd("report not found")

	// ErrNotInitialized indicates the store was used before Open succeeded.
	ErrNotInitialized = errors.NewStd("database connection is not initialized")
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error for a rejected input
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// notFoundError wraps a sentinel in a not-found error carrying the id
func notFoundError(sentinel error, resource string, id any) error {
	return errors.New(sentinel).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("resource", resource).
		Context("id", id).
		Build()
}

// connectionError classifies failures while opening or pinging the database
func connectionError(err error, dialect, operation string) error {
	priority := errors.PriorityHigh
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "access denied") || strings.Contains(errStr, "unable to open") {
		priority = errors.PriorityCritical
	}

	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Priority(priority).
		Context("operation", operation).
		Context("dialect", dialect).
		Build()
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
