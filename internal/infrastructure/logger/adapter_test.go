package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerAdapter_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLoggerAdapter("smoke run/1", Options{Dir: dir, Level: zapcore.InfoLevel})
	require.NoError(t, err)

	log.Debug("dropped below level")
	log.WithField("run_id", "r-1").Info("Scenario started", "scenario", "bing-search")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*_smoke_run_1.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "Scenario started", lines[0]["message"])
	assert.Equal(t, "bing-search", lines[0]["scenario"])
	assert.Equal(t, "r-1", lines[0]["run_id"])
	assert.Contains(t, lines[0], "timestamp")
}

func TestWithFields_AddsEveryField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).
		Named("fixture").
		WithFields(map[string]any{"run_id": "abc", "test": "TestX", "driver": "static"})

	log.Warn("Tracing not started", "reason", "unsupported by driver")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fixture", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["run_id"])
	assert.Equal(t, "TestX", ctx["test"])
	assert.Equal(t, "static", ctx["driver"])
	assert.Equal(t, "unsupported by driver", ctx["reason"])
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored", "k", 1)
	assert.NoError(t, log.Close())
}

func TestNewTestLogger(t *testing.T) {
	log := NewTestLogger(t)
	log.Info("visible with -v", "k", "v")
	assert.NoError(t, log.Close())
}
