package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"LINESCHED_CATALOG", "LINESCHED_STATE_DIR", "LINESCHED_ADDR",
		"LINESCHED_PARALLELISM", "LINESCHED_LOG_FILE", "LINESCHED_LOG_LEVEL",
		"LINESCHED_MODEL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "", cfg.CatalogPath)
	assert.Equal(t, ".linesched", cfg.StateDir)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, runtime.NumCPU(), cfg.Parallelism)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "", cfg.Model)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LINESCHED_CATALOG", "line.yaml")
	t.Setenv("LINESCHED_STATE_DIR", "/tmp/runs")
	t.Setenv("LINESCHED_PARALLELISM", "3")
	t.Setenv("LINESCHED_LOG_LEVEL", "debug")
	t.Setenv("LINESCHED_MODEL", "claude-haiku-4-5")

	cfg := Load()
	assert.Equal(t, "line.yaml", cfg.CatalogPath)
	assert.Equal(t, "/tmp/runs", cfg.StateDir)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "claude-haiku-4-5", cfg.Model)
}

func TestLoad_InvalidParallelism(t *testing.T) {
	t.Setenv("LINESCHED_PARALLELISM", "zero")
	assert.Equal(t, runtime.NumCPU(), Load().Parallelism)

	t.Setenv("LINESCHED_PARALLELISM", "-2")
	assert.Equal(t, runtime.NumCPU(), Load().Parallelism)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestNewLogger_Fanout(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := newLogger(&stderr, &file, slog.LevelInfo)

	logger.Info("schedule built", "makespan", 8)
	logger.Debug("hidden")

	assert.Contains(t, stderr.String(), "schedule built")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "schedule built", entry["msg"])
	assert.EqualValues(t, 8, entry["makespan"])
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	var stderr bytes.Buffer
	logger := newLogger(&stderr, nil, slog.LevelDebug)
	logger.Debug("split evaluated", "k", 2)

	assert.Contains(t, stderr.String(), "split evaluated")
	assert.Contains(t, stderr.String(), "k=2")
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linesched.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("hello")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "hello", entry["msg"])
}

func TestSetupLogger_NoFile(t *testing.T) {
	logger, cleanup := SetupLogger("", slog.LevelInfo)
	require.NotNil(t, logger)
	assert.NoError(t, cleanup())
}
