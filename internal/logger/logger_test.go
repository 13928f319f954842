package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestModuleLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelDebug, time.UTC).Module("predictionlog").Module("csv")

	log.With(String("path", "predictions.csv")).Info("row appended",
		Int("row", 3),
		Float64("confidence", 0.923456),
		Bool("synced", true),
		Error(errors.New("boom")),
		Duration("elapsed", 1500*time.Millisecond))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "row appended", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "predictionlog.csv", entry["module"])
	assert.Equal(t, "predictions.csv", entry["path"])
	assert.InDelta(t, 3, entry["row"], 0)
	assert.InDelta(t, 0.923, entry["confidence"], 1e-9)
	assert.Equal(t, true, entry["synced"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "1.5s", entry["elapsed"])
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelWarn, time.UTC)

	log.Trace("trace")
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")
	log.Log(LogLevelInfo, "explicit info")
	log.Log(LogLevelError, "explicit error")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 3)
	assert.Equal(t, "warn", entries[0]["msg"])
	assert.Equal(t, "error", entries[1]["msg"])
	assert.Equal(t, "explicit error", entries[2]["msg"])
}

func TestTraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	NewSlogLogger(buf, LogLevelTrace, time.UTC).Trace("sql statement")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "TRACE", entries[0]["level"])
}

func TestWithContextTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo, time.UTC)

	ctx := WithTraceID(context.Background(), "req-42")
	log.WithContext(ctx).Info("handled")
	log.WithContext(context.Background()).Info("untraced")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewSlogLogger(buf, LogLevelInfo, time.UTC)
	_ = parent.With(String("request_id", "abc"))

	parent.Info("parent entry")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "request_id")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wastenet.log")

	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "debug"},
		ModuleLevels: map[string]string{"api": "error"},
	})
	require.NoError(t, err)

	cl.Module("summary").Debug("prompt built", Int("rows", 10))
	cl.Module("api").Info("suppressed by module level")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entries := decodeLines(t, data)
	require.Len(t, entries, 1)
	assert.Equal(t, "summary", entries[0]["module"])
	assert.Equal(t, "prompt built", entries[0]["msg"])
}

func TestNewCentralLoggerRejectsBadInput(t *testing.T) {
	_, err := NewCentralLogger(nil)
	require.Error(t, err)

	_, err = NewCentralLogger(&LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)
}

func TestApplyConfigDefaults(t *testing.T) {
	cfg := &LoggingConfig{}
	applyConfigDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.DefaultLevel)
	require.NotNil(t, cfg.Console)
	assert.True(t, cfg.Console.Enabled)
	require.NotNil(t, cfg.FileOutput)
	assert.False(t, cfg.FileOutput.Enabled)
	assert.Equal(t, DefaultLogPath, cfg.FileOutput.Path)
}
