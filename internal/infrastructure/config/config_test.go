package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Storage config
	assert.Equal(t, BridgeLocal, cfg.Storage.Bridge)
	assert.Equal(t, int64(1<<20), cfg.Storage.Threshold)
	assert.Equal(t, 1<<20, cfg.Storage.ChunkSize)
	assert.Equal(t, int64(256<<20), cfg.Storage.SessionBudget)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
		"STORAGE_BRIDGE":         "remote",
		"STORAGE_BRIDGE_URL":     "http://10.0.2.2:9000",
		"STORAGE_BRIDGE_TIMEOUT": "5s",
		"STORAGE_THRESHOLD":      "4194304",
		"STORAGE_CHUNK_SIZE":     "524288",
		"STORAGE_SESSION_BUDGET": "65536",
		"UPLOAD_MAX_BYTES":       "1024",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, BridgeRemote, cfg.Storage.Bridge)
	assert.Equal(t, "http://10.0.2.2:9000", cfg.Storage.BridgeURL)
	assert.Equal(t, 5*time.Second, cfg.Storage.BridgeTimeout)
	assert.Equal(t, int64(4<<20), cfg.Storage.Threshold)
	assert.Equal(t, 512<<10, cfg.Storage.ChunkSize)
	assert.Equal(t, int64(64<<10), cfg.Storage.SessionBudget)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown bridge", key: "STORAGE_BRIDGE", val: "ftp"},
		{name: "zero chunk size", key: "STORAGE_CHUNK_SIZE", val: "0"},
		{name: "negative threshold", key: "STORAGE_THRESHOLD", val: "-1"},
		{name: "zero session budget", key: "STORAGE_SESSION_BUDGET", val: "0"},
		{name: "not a number", key: "STORAGE_THRESHOLD", val: "lots"},
		{name: "bad duration", key: "STORAGE_BRIDGE_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestRemoteBridgeNeedsURL(t *testing.T) {
	t.Setenv("STORAGE_BRIDGE", "remote")
	t.Setenv("STORAGE_BRIDGE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_BRIDGE_URL")
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{name: "default values", wantPort: "8000", wantHost: "0.0.0.0"},
		{name: "custom port", port: "9000", wantPort: "9000", wantHost: "0.0.0.0"},
		{name: "custom host", host: "localhost", wantPort: "8000", wantHost: "localhost"},
		{name: "custom port and host", port: "3000", host: "127.0.0.1", wantPort: "3000", wantHost: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}
			if tt.host != "" {
				t.Setenv("HOST", tt.host)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}
