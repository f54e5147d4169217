// Package logger provides diagnostics for isoguide.
//
// Two kinds of output share one writer (stderr by default):
//
//   - Debug, Info, Warn and Section print human-readable lines and only
//     when verbose mode is enabled via the --verbose flag. They trace the
//     index and ask pipelines.
//   - Structured returns a *slog.Logger for long-running processes (the
//     HTTP API access log, server lifecycle). It is always on, at Info
//     level or Debug level in verbose mode, as text or JSON.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Output formats for the structured logger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu         sync.RWMutex
	verbose    bool
	logFormat  = FormatText
	output     io.Writer = os.Stderr
	structured *slog.Logger
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	structured = nil
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for all logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	structured = nil
}

// SetFormat selects text or JSON for the structured logger.
// Unknown formats fall back to text.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatText
	}
	logFormat = f
	structured = nil
}

// Structured returns the structured logger for the current settings.
func Structured() *slog.Logger {
	mu.RLock()
	l := structured
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if structured == nil {
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		if verbose {
			opts.Level = slog.LevelDebug
		}

		var handler slog.Handler
		switch logFormat {
		case FormatJSON:
			handler = slog.NewJSONHandler(output, opts)
		default:
			handler = slog.NewTextHandler(output, opts)
		}
		structured = slog.New(handler)
	}
	return structured
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	printf("[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	printf("[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	printf("[WARN] ", format, args...)
}

func printf(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
