package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug msg", "key", "value")
	logger.Info("info msg", "count", 3)
	logger.Warn("warn msg")
	logger.Error("error msg", "cause", "test")

	out := buf.String()
	require.Contains(t, out, "debug msg")
	require.Contains(t, out, "key=value")
	require.Contains(t, out, "info msg")
	require.Contains(t, out, "count=3")
	require.Contains(t, out, "warn msg")
	require.Contains(t, out, "cause=test")
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	logger := NewNop()

	// No output and no panics, whatever we throw at it.
	logger.Debug("msg", "k", "v")
	logger.Info("msg")
	logger.Warn("msg", "odd-key-only")
	logger.Error("msg", "k", 1, "k2", 2)
}
