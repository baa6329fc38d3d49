package core

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.Printf("Nsamples = %d, K = %d\n", 2, 3)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="Nsamples = 2, K = 3"`)
	assert.Equal(t, 1, strings.Count(out, "\n"), "trailing newline should not produce an extra line")
}

func TestNewSlogLogger_NilFallsBackToDefault(t *testing.T) {
	logger := NewSlogLogger(nil)
	sl, ok := logger.(*SlogLogger)
	if assert.True(t, ok) {
		assert.Same(t, slog.Default(), sl.Slog())
	}
}
