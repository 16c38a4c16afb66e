package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadUsesDefaultsWhenUnset(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "http://localhost:8000", cfg.DataServiceURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4096, cfg.MaxCacheEntries)
	assert.Equal(t, 1280, cfg.WindowWidth)
	assert.Equal(t, 720, cfg.WindowHeight)
	assert.False(t, cfg.LogPretty)
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("VANTAGE_DATA_SERVICE_URL", "https://data.example.com")
	t.Setenv("VANTAGE_FETCH_TIMEOUT", "2500ms")
	t.Setenv("VANTAGE_MAX_CACHE_ENTRIES", "64")
	t.Setenv("VANTAGE_WINDOW_WIDTH", "1920")
	t.Setenv("VANTAGE_WINDOW_HEIGHT", "1080")
	t.Setenv("VANTAGE_LOG_PRETTY", "true")

	cfg := Load()
	assert.Equal(t, "https://data.example.com", cfg.DataServiceURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, 64, cfg.MaxCacheEntries)
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
	assert.True(t, cfg.LogPretty)
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("VANTAGE_FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("VANTAGE_MAX_CACHE_ENTRIES", "not-a-number")
	t.Setenv("VANTAGE_LOG_PRETTY", "not-a-bool")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4096, cfg.MaxCacheEntries)
	assert.False(t, cfg.LogPretty)
}
