// Package config loads vantage-engine's ambient, environment-backed
// settings, generalizing the getEnv/getEnvAsInt/godotenv.Load shape of
// aristath-sentinel's trader-go/internal/config: a .env file is loaded if
// present, then every field falls back to a documented default so the
// engine runs with zero configuration in development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-backed settings every top-level vantage-engine
// binary reads at startup.
type Config struct {
	// DataServiceURL is the base URL of the data-serving collaborator's
	// /api/data endpoint (spec.md §6.1).
	DataServiceURL string

	// FetchTimeout is loaded from the environment, but nothing in this tree
	// passes it on: the DataManager's fetch client applies its own fixed
	// 10-second timeout to each /api/data request.
	FetchTimeout time.Duration

	// MaxCacheEntries bounds DataManager's per-column day-aligned LRU cache.
	MaxCacheEntries int

	// WindowWidth and WindowHeight size the host window on first launch.
	WindowWidth  int
	WindowHeight int

	// QualityPresetPath optionally points at a custom QualityPreset JSON
	// file. Nothing in this tree reads it: the host control surface's
	// set_quality_preset always resolves against preset.DefaultQualityPresets.
	QualityPresetPath string

	// LogPretty selects a human-readable console writer over plain JSON for
	// vantagelog.Base, mirroring the VANTAGE_LOG_PRETTY flag vantagelog
	// itself reads directly. Nothing passes this field to vantagelog, so the
	// writer is chosen by vantagelog's own os.Getenv lookup alone.
	LogPretty bool
}

// Load reads a .env file if present, then resolves every Config field from
// its environment variable, falling back to the given default.
//
// Returns:
//   - *Config: the resolved configuration
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DataServiceURL:    getEnv("VANTAGE_DATA_SERVICE_URL", "http://localhost:8000"),
		FetchTimeout:      getEnvAsDuration("VANTAGE_FETCH_TIMEOUT", 10*time.Second),
		MaxCacheEntries:   getEnvAsInt("VANTAGE_MAX_CACHE_ENTRIES", 4096),
		WindowWidth:       getEnvAsInt("VANTAGE_WINDOW_WIDTH", 1280),
		WindowHeight:      getEnvAsInt("VANTAGE_WINDOW_HEIGHT", 720),
		QualityPresetPath: getEnv("VANTAGE_QUALITY_PRESET_PATH", ""),
		LogPretty:         getEnvAsBool("VANTAGE_LOG_PRETTY", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
