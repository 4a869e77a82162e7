package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevelFromString("DEBUG"))
	assert.Equal(t, slog.LevelWarn, LogLevelFromString("warning"))
	assert.Equal(t, slog.LevelError, LogLevelFromString("error"))
	assert.Equal(t, slog.LevelInfo, LogLevelFromString("loud"))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synform.log")
	logger := NewLogger(LoggerConfig{Level: "info", Filename: path, MaxSizeMB: 1})
	logger.Debug("hidden")
	logger.Info("form published", slog.String("form_id", "f1"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"form published"`)
	assert.Contains(t, string(b), `"form_id":"f1"`)
	assert.NotContains(t, string(b), "hidden")
}
