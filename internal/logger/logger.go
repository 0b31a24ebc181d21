// Package logger constructs the application's structured loggers.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New constructs a logger for the named component. Level and format come
// from the logging config section ("debug"/"info"/"warn"/"error",
// "text"/"json").
func New(component, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With("component", component)
}

// Default constructs a text logger at info level, for callers that run
// before configuration is loaded.
func Default(component string) *slog.Logger {
	return New(component, "info", "text")
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
