package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the package-level structured logger, configured once by Setup
// and shared by every command.
var Logger *slog.Logger

// Verbose reports whether debug-level logging is enabled.
var Verbose bool

func init() {
	Setup(false, false, nil)
}

// Setup configures the package logger. verbose enables debug-level records,
// jsonOutput switches the encoding from text to JSON, and w selects the
// destination. A nil writer means stderr.
func Setup(verbose, jsonOutput bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
}

// Debug logs a debug-level message. Suppressed unless verbose mode is on.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info-level message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning-level message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error-level message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
