package config

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config holds all configuration values.
type Config struct {
	// Catalog file (YAML). Empty means the built-in catalog.
	CatalogPath string

	// Run history
	StateDir string

	// HTTP
	Addr string

	// Sequencing
	Parallelism int

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Plan summaries (Claude model name; empty means the client default)
	Model string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		CatalogPath: getEnv("LINESCHED_CATALOG", ""),
		StateDir:    getEnv("LINESCHED_STATE_DIR", ".linesched"),
		Addr:        getEnv("LINESCHED_ADDR", ":8080"),
		Parallelism: getEnvInt("LINESCHED_PARALLELISM", runtime.NumCPU()),
		LogFile:     getEnv("LINESCHED_LOG_FILE", ""),
		LogLevel:    ParseLogLevel(getEnv("LINESCHED_LOG_LEVEL", "INFO")),
		Model:       getEnv("LINESCHED_MODEL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", val)
		return defaultVal
	}
	return n
}

// ParseLogLevel maps a level name to a slog.Level, defaulting to INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
