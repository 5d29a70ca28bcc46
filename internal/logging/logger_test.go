package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for level, debug := range map[string]bool{"debug": true, "info": false, "warn": false, "": false} {
		logger, err := New(level)
		require.NoError(t, err)
		assert.Equal(t, debug, logger.Core().Enabled(-1), "level %q", level)
	}

	logger, err := New("error")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(1))
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger, err := New("info", path)
	require.NoError(t, err)
	logger.Info("batch started")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"batch started"`)
	assert.Contains(t, string(data), `"t":`)
}

func TestMustFallsBackToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.log")

	_, err := New("debug", path)
	require.Error(t, err)

	logger := Must("debug", path)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestFallbackReportsCause(t *testing.T) {
	var buf bytes.Buffer

	logger := fallback("warn", zapcore.AddSync(&buf), errors.New("permission denied"))
	logger.Info("hidden")
	logger.Error("shown")
	_ = logger.Sync()

	out := buf.String()
	assert.Contains(t, out, `"msg":"Failed to open log outputs, logging to stderr only"`)
	assert.Contains(t, out, `"error":"permission denied"`)
	assert.Contains(t, out, `"msg":"shown"`)
	assert.NotContains(t, out, "hidden")
}
