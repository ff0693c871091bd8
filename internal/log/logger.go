// Package log configures slog for the binaries and provides a small
// component-tagged wrapper.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on stdout as the default slog logger.
// Level names are case-insensitive; unknown names mean info.
func Setup(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger tags every record with a component attribute.
type Logger struct {
	*slog.Logger
	component string
}

// WithComponent derives a component logger from the default slog logger.
func WithComponent(component string) *Logger {
	return &Logger{
		Logger:    slog.Default().With("component", component),
		component: component,
	}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

func (l *Logger) Component() string {
	return l.component
}
