// Package logging builds the structured loggers every process shares.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	tlog "go.temporal.io/sdk/log"
)

// New returns a JSON logger tagged with the service name
func New(service string) *slog.Logger {
	return NewWithWriter(os.Stdout, service, levelFromEnv())
}

// NewWithWriter is New with an explicit sink and level
func NewWithWriter(w io.Writer, service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", service)
}

// Temporal adapts a slog logger for the Temporal client and worker
func Temporal(logger *slog.Logger) tlog.Logger {
	return tlog.NewStructuredLogger(logger)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
