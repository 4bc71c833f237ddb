// Package errors provides categorized errors with structured context and
// optional telemetry reporting.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// ErrorCategory groups errors for status mapping, logging and telemetry.
type ErrorCategory string

// CategorizedError is implemented by errors that know their own category.
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryDatabase      ErrorCategory = "database"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryConflict      ErrorCategory = "conflict"
	CategoryState         ErrorCategory = "state"
	CategoryLimit         ErrorCategory = "limit"
	CategoryHTTP          ErrorCategory = "http-request"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryProcessing    ErrorCategory = "processing"
	CategoryGeneric       ErrorCategory = "generic"

	CategoryTimeout      ErrorCategory = "timeout"
	CategoryCancellation ErrorCategory = "cancellation"
)

// Priority values. An empty priority means the reporter decides.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

const (
	modulePrefix  = "github.com/edctrack/exposure/"
	packagePrefix = modulePrefix + "internal/errors."
)

// componentAliases renames package names where the component label differs.
var componentAliases = map[string]string{
	"conf": "configuration",
	"cmd":  "cli",
	"main": "cli",
}

// EnhancedError wraps an error with a category, priority and context. The
// context is fixed once Build returns.
type EnhancedError struct {
	Err       error
	Category  ErrorCategory
	Priority  string
	Context   map[string]any
	Timestamp time.Time

	component string
	callers   []uintptr
	reported  atomic.Bool
}

func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is reports whether target is an EnhancedError of the same category, or
// matches the wrapped error.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

// GetComponent returns the explicit component, or the one derived from the
// package that built the error.
func (ee *EnhancedError) GetComponent() string {
	if ee.component != "" {
		return ee.component
	}
	return componentFromCallers(ee.callers)
}

// GetCategory returns the category as a string.
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetPriority returns the explicit priority, or "".
func (ee *EnhancedError) GetPriority() string {
	return ee.Priority
}

// GetContext returns a copy of the context map.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// GetMessage returns the wrapped error's message.
func (ee *EnhancedError) GetMessage() string {
	if ee.Err == nil {
		return ""
	}
	return ee.Err.Error()
}

// MarkReported records that telemetry has seen this error.
func (ee *EnhancedError) MarkReported() { ee.reported.Store(true) }

// IsReported reports whether telemetry has seen this error.
func (ee *EnhancedError) IsReported() bool { return ee.reported.Load() }

// ErrorBuilder assembles an EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	priority  string
	context   map[string]any
}

// New starts building an enhanced error around err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts building an enhanced error from a format string.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Wrap is an alias of New.
func Wrap(err error) *ErrorBuilder {
	return New(err)
}

// Component sets the component name. When unset it is derived from the caller.
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Priority sets the priority. Unknown non-empty values become medium.
func (eb *ErrorBuilder) Priority(priority string) *ErrorBuilder {
	switch priority {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		eb.priority = priority
	default:
		eb.priority = PriorityMedium
	}
	return eb
}

// Context adds one key to the error context.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Timing records an operation name and its duration in milliseconds.
func (eb *ErrorBuilder) Timing(operation string, duration time.Duration) *ErrorBuilder {
	return eb.Context("operation", operation).Context("duration_ms", duration.Milliseconds())
}

// Build creates the error and hands it to the telemetry reporter, if one is
// active. Without a category the error chain and message are inspected.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Category:  eb.category,
		Priority:  eb.priority,
		Context:   eb.context,
		Timestamp: time.Now(),
		component: eb.component,
	}
	if ee.component == "" {
		pcs := make([]uintptr, 8)
		ee.callers = pcs[:runtime.Callers(2, pcs)]
	}
	if ee.Category == "" {
		ee.Category = detectCategory(eb.err, ee.GetComponent())
	}

	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}
	return ee
}

// hasActiveReporting is true while an enabled telemetry reporter is installed.
var hasActiveReporting atomic.Bool

// componentFromCallers names the first package outside this one. Frames
// outside the module yield ComponentUnknown.
func componentFromCallers(pcs []uintptr) string {
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, packagePrefix) {
			return componentOf(frame.Function)
		}
		if !more {
			return ComponentUnknown
		}
	}
}

// componentOf maps a fully qualified function name to a component label.
func componentOf(funcName string) string {
	rel, ok := strings.CutPrefix(funcName, modulePrefix)
	if !ok {
		if strings.HasPrefix(funcName, "main.") {
			return componentAliases["main"]
		}
		return ComponentUnknown
	}
	rel = strings.TrimPrefix(rel, "internal/")

	name := rel
	if i := strings.IndexAny(rel, "/."); i >= 0 {
		name = rel[:i]
	}
	if alias, ok := componentAliases[name]; ok {
		return alias
	}
	return name
}

// detectCategory guesses a category from the error chain, its message and
// the component.
func detectCategory(err error, component string) ErrorCategory {
	if err == nil {
		return CategoryGeneric
	}

	var catErr CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr.ErrorCategory()
	}
	var enhErr *EnhancedError
	if stderrors.As(err, &enhErr) && enhErr.Category != "" {
		return enhErr.Category
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return CategoryNotFound
	case strings.Contains(msg, "validation"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return CategoryValidation
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return CategoryTimeout
	case strings.Contains(msg, "context canceled"):
		return CategoryCancellation
	}

	switch component {
	case "datastore":
		return CategoryDatabase
	case "configuration":
		return CategoryConfiguration
	case "api":
		return CategoryHTTP
	case "exposure", "alerting":
		return CategoryProcessing
	}
	return CategoryGeneric
}

// ValidationError creates a validation error for the named input field.
func ValidationError(field, message string) *EnhancedError {
	return New(NewStd(message)).
		Category(CategoryValidation).
		Context("field", field).
		Build()
}

// NotFoundError creates a not-found error for the given resource and id.
func NotFoundError(resource string, id any) *EnhancedError {
	return Newf("%s not found", resource).
		Category(CategoryNotFound).
		Context("resource", resource).
		Context("id", id).
		Build()
}

// NewStd creates a plain error.
func NewStd(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// IsCategory reports whether the first EnhancedError in err's chain has category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}

func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}

func IsValidation(err error) bool {
	return IsCategory(err, CategoryValidation)
}

// Field returns the "field" context value of err, if any.
func Field(err error) string {
	var ee *EnhancedError
	if !As(err, &ee) {
		return ""
	}
	field, _ := ee.Context["field"].(string)
	return field
}
