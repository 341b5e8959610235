package nthm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Contains(t, LogLevel(99).String(), "UNKNOWN")
}

func TestNoOpLogger(t *testing.T) {
	var l noOpLogger
	assert.False(t, l.IsEnabled(LevelError))
	l.Log(LogEntry{Level: LevelError}) // must not panic
}

func TestDefaultLogger_LevelGating(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "log.txt"))
	require.NoError(t, err)
	defer f.Close()

	logger := NewDefaultLogger(LevelWarn)
	logger.Out = f
	assert.False(t, logger.IsEnabled(LevelDebug))
	assert.True(t, logger.IsEnabled(LevelError))

	logger.Log(LogEntry{Level: LevelDebug, Category: "pipe", Message: "should not appear"})
	logger.Log(LogEntry{Level: LevelError, Category: "pipe", Message: "should appear", Err: errors.New("boom")})

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	logger.SetLevel(LevelDebug)
	assert.True(t, logger.IsEnabled(LevelDebug))
}

func TestRuntime_Logf_RespectsConfiguredLogger(t *testing.T) {
	rt := New(&RuntimeConfig{Logger: NewDefaultLogger(LevelInfo)})
	rt.logf(LevelInfo, "pipe", "hello", nil) // must not panic
}
