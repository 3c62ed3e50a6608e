// Package logger sets up the zerolog logger shared by the client, the TUI and the gateway.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.Nop()
)

// Options configures Setup
type Options struct {
	// Verbose lowers the level to debug
	Verbose bool
	// File, when set, receives JSON log lines (the TUI owns the terminal)
	File string
	// Console writes human-readable lines to the given writer instead of JSON
	Console io.Writer
	// JSON writes JSON lines to the given writer; used where stdout is collected
	JSON io.Writer
}

// Setup configures the process-wide base logger. The returned closer
// releases the log file, if one was opened.
func Setup(opts Options) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var (
		w      io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)

	switch {
	case opts.Console != nil:
		w = zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen}
	case opts.JSON != nil:
		w = opts.JSON
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = f
	}

	Set(zerolog.New(w).Level(level).With().Timestamp().Logger())
	return closer, nil
}

// Set replaces the base logger
func Set(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// For returns a logger tagged with the given component
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
