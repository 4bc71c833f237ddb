// Package buildinfo carries build-time metadata injected with -ldflags.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata the build did not set.
const UnknownValue = "unknown"

// Set at link time:
//
//	go build -ldflags "-X github.com/edctrack/exposure/internal/buildinfo.version=v1.2.0"
var (
	version   string
	buildDate string
)

// Context contains build-time metadata that is not user-configurable.
type Context struct {
	version   string
	buildDate string
}

// NewContext creates a Context from explicit values.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Current returns the metadata linked into this binary.
func Current() *Context {
	return NewContext(version, buildDate)
}

// Version returns the release version, or UnknownValue.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build timestamp, or UnknownValue.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

func (c *Context) String() string {
	return fmt.Sprintf("edc-exposure %s (built %s)", c.Version(), c.BuildDate())
}
