package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// SlogLogger implements Logger on top of a structured slog.Logger.
// Each Printf call becomes one info record; trailing newlines are dropped.
type SlogLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger writing through slog's default handler
func NewDefaultLogger() Logger {
	return &SlogLogger{logger: slog.Default()}
}

// NewSlogLogger wraps an existing slog.Logger
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (sl *SlogLogger) Printf(format string, args ...interface{}) {
	sl.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Slog exposes the underlying structured logger
func (sl *SlogLogger) Slog() *slog.Logger {
	return sl.logger
}

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
