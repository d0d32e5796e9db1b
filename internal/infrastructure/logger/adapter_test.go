package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, cfg Config) (*LoggerAdapter, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := newLoggerAdapter(cfg, zapcore.AddSync(buf))
	require.NoError(t, err)
	return l, buf
}

func TestLoggerAdapter_JSONFields(t *testing.T) {
	l, buf := newBufferLogger(t, Config{Level: "debug", Format: "json"})

	l.WithField("task_id", "abc").WithFields(map[string]any{"profile_id": "p1"}).Info("Task started", "max_steps", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Task started", entry["msg"])
	assert.Equal(t, "abc", entry["task_id"])
	assert.Equal(t, "p1", entry["profile_id"])
	assert.EqualValues(t, 3, entry["max_steps"])
}

func TestLoggerAdapter_LevelFilter(t *testing.T) {
	l, buf := newBufferLogger(t, Config{Level: "warn", Format: "json"})

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerAdapter_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger(t, Config{Level: "loud", Format: "json"})

	l.Debug("debug line")
	l.Info("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestLoggerAdapter_Named(t *testing.T) {
	l, buf := newBufferLogger(t, Config{Level: "info", Format: "json"})

	l.Named("gologin").Info("Profile started")

	assert.Contains(t, buf.String(), `"logger":"gologin"`)
}

func TestLoggerAdapter_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.File = path

	l, _ := newBufferLogger(t, cfg)
	l.Error("Task failed", "error", "boom")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"Task failed"`))
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	assert.NoError(t, l.Close())
}
