// Package log sets up the process logger. Output goes to a log file so that
// structured service logs never interleave with command output.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// FileName is the log file created inside the log directory.
const FileName = "purestream.log"

var (
	mu      sync.Mutex
	file    *os.File
	current = New(os.Stderr, "warn")
)

// New creates a logger writing to w with timestamps enabled.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *charmlog.Logger {
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "purestream",
	})
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Init opens <logDir>/purestream.log and makes it the destination of the
// default logger. Go's standard log package is redirected to the same file.
func Init(logDir, level string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
	current = New(f, level)
	charmlog.SetDefault(current)

	stdlog.SetOutput(f)
	stdlog.SetFlags(stdlog.Ldate | stdlog.Ltime)
	return nil
}

// Default returns the process logger.
func Default() *charmlog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// With returns a child of the process logger carrying the key/value pairs.
func With(keyvals ...any) *charmlog.Logger {
	return Default().With(keyvals...)
}

// Close closes the log file and restores stderr output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	current = New(os.Stderr, "warn")
	charmlog.SetDefault(current)
	stdlog.SetOutput(os.Stderr)
	return err
}
