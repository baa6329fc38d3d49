package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by forwarding to another logger and
// copying each message to a console channel
type WebLogger struct {
	next        core.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger that tees into consoleChan. A nil next
// logger discards the local copy.
func NewWebLogger(next core.Logger, consoleChan chan<- ConsoleMessage) core.Logger {
	if next == nil {
		next = core.NopLogger{}
	}
	return &WebLogger{
		next:        next,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	wl.next.Printf("%s", message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     levelOf(message),
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// levelOf classifies a viewer log line for the console stream
func levelOf(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "failed"):
		return "error"
	case strings.HasPrefix(lower, "ignoring"),
		strings.HasPrefix(lower, "keeping previous"),
		strings.Contains(lower, "not available"):
		return "warning"
	}
	return "info"
}
