package app

import (
	"context"
	"io"

	"github.com/edctrack/exposure/internal/buildinfo"
	"github.com/edctrack/exposure/internal/conf"
)

// Session is shared by the CLI commands. The root command opens it before a
// subcommand runs, and the caller closes it once execution ends.
type Session struct {
	Build *buildinfo.Context
	App   *App

	// Format is the output format chosen with --output.
	Format string
}

// NewSession creates an unopened session.
func NewSession(build *buildinfo.Context) *Session {
	return &Session{Build: build, Format: FormatJSON}
}

// Open builds the application from settings.
func (s *Session) Open(ctx context.Context, settings *conf.Settings) error {
	a, err := New(ctx, settings, s.Build)
	if err != nil {
		return err
	}
	s.App = a
	return nil
}

// Print renders v in the session's output format.
func (s *Session) Print(w io.Writer, v any) error {
	return Render(w, s.Format, v)
}

// Close releases the application if it was opened.
func (s *Session) Close() error {
	if s == nil || s.App == nil {
		return nil
	}
	err := s.App.Close()
	s.App = nil
	return err
}
