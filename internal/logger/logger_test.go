package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleLoggerWritesStructuredFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewWriterLogger(buf, LogLevelDebug).Module("exposure")

	log.Info("report generated",
		String("user_id", "u-1"),
		Int("scan_count", 3),
		Float64("total_exposure", 12.34567),
		Bool("persisted", true),
		Duration("elapsed", 1500*time.Millisecond),
		Error(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "msg=\"report generated\"")
	assert.Contains(t, out, "module=exposure")
	assert.Contains(t, out, "user_id=u-1")
	assert.Contains(t, out, "scan_count=3")
	assert.Contains(t, out, "total_exposure=12.346")
	assert.Contains(t, out, "elapsed=1.5s")
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "time=")
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewWriterLogger(buf, LogLevelWarn).Module("alerting")

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestSubModuleAndWith(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	base := NewWriterLogger(buf, LogLevelInfo).Module("datastore")
	child := base.Module("alerts").With(String("user_id", "u-2"))

	child.Info("alert stored")
	base.Info("plain")

	out := buf.String()
	assert.Contains(t, out, "module=datastore.alerts")
	assert.Contains(t, out, "user_id=u-2")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("user_id=")))
}

func TestWithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewWriterLogger(buf, LogLevelInfo).Module("api")

	ctx := WithTraceID(context.Background(), "trace-123")
	log.WithContext(ctx).Info("request")
	log.WithContext(context.Background()).Info("untraced")

	assert.Contains(t, buf.String(), "trace_id=trace-123")
	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.NotEmpty(t, NewTraceID())
}

func TestTraceLevelLabel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	NewWriterLogger(buf, LogLevelTrace).Module("gorm").Trace("sql query")

	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "debug"},
		ModuleLevels: map[string]string{"quiet": "error"},
	})
	require.NoError(t, err)

	cl.Module("exposure").Info("to file", String("k", "v"))
	cl.Module("quiet").Info("suppressed")
	require.NoError(t, cl.Flush())
	require.NoError(t, cl.Close())
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
	assert.Contains(t, string(data), `"k":"v"`)
	assert.NotContains(t, string(data), "suppressed")
}

func TestNewCentralLoggerRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)

	_, err = NewCentralLogger(nil)
	require.Error(t, err)
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidLevel("trace"))
	assert.True(t, ValidLevel("error"))
	assert.False(t, ValidLevel("verbose"))
}

func TestGormAdapterTrace(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	adapter := NewGormLoggerAdapter(NewWriterLogger(buf, LogLevelTrace).Module("gorm"), time.Millisecond)

	adapter.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	adapter.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT", 0
	}, errors.New("constraint failed"))

	out := buf.String()
	assert.Contains(t, out, "slow query")
	assert.Contains(t, out, "query error")
	assert.Same(t, adapter, adapter.LogMode(0))
}
