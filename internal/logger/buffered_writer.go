package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	defaultBufferSize    = 32 * 1024
	defaultFlushInterval = 5 * time.Second
	logFilePermissions   = 0o600
)

// bufferedFileWriter appends to a log file through a buffer that is flushed
// periodically and on Close.
type bufferedFileWriter struct {
	mu        sync.Mutex
	file      *os.File
	writer    *bufio.Writer
	ticker    *time.Ticker
	stopFlush chan struct{}
	flushDone chan struct{}
	closed    bool
}

func newBufferedFileWriter(path string, flushInterval time.Duration) (*bufferedFileWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	w := &bufferedFileWriter{
		file:      file,
		writer:    bufio.NewWriterSize(file, defaultBufferSize),
		ticker:    time.NewTicker(flushInterval),
		stopFlush: make(chan struct{}),
		flushDone: make(chan struct{}),
	}
	go w.autoFlushLoop()

	return w, nil
}

func (w *bufferedFileWriter) autoFlushLoop() {
	defer close(w.flushDone)

	for {
		select {
		case <-w.stopFlush:
			return
		case <-w.ticker.C:
			// errors surface on the next Write
			_ = w.Flush()
		}
	}
}

// Write writes data to the buffer. Thread-safe.
func (w *bufferedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0, fmt.Errorf("log writer is closed")
	}
	return w.writer.Write(p)
}

// Flush pushes buffered bytes to the OS without fsync.
func (w *bufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log buffer: %w", err)
	}
	return nil
}

// Close flushes, syncs and closes the file. Safe to call more than once.
func (w *bufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.ticker.Stop()
	close(w.stopFlush)
	<-w.flushDone

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if err := w.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush log buffer: %w", err))
	}
	if err := w.file.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("failed to sync log file: %w", err))
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	w.writer = nil
	w.file = nil

	return errors.Join(errs...)
}
