package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Bridge modes
const (
	BridgeLocal  = "local"
	BridgeRemote = "remote"
	BridgeNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Upload    UploadConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig selects and tunes the native storage bridge.
type StorageConfig struct {
	// Bridge is local (emulated device directories), remote (native shell) or none
	Bridge        string        `envconfig:"STORAGE_BRIDGE" default:"local"`
	DataDir       string        `envconfig:"STORAGE_DATA_DIR" default:"./data"`
	BridgeURL     string        `envconfig:"STORAGE_BRIDGE_URL" default:"http://127.0.0.1:8787"`
	BridgeTimeout time.Duration `envconfig:"STORAGE_BRIDGE_TIMEOUT" default:"30s"`
	FileHost      string        `envconfig:"STORAGE_FILE_HOST" default:"http://localhost/_capacitor_file_"`
	Threshold     int64         `envconfig:"STORAGE_THRESHOLD" default:"1048576"`
	ChunkSize     int           `envconfig:"STORAGE_CHUNK_SIZE" default:"1048576"`
	SessionBudget int64         `envconfig:"STORAGE_SESSION_BUDGET" default:"268435456"`
}

// UploadConfig bounds multipart uploads.
type UploadConfig struct {
	MaxBytes    int64 `envconfig:"UPLOAD_MAX_BYTES" default:"2147483648"`
	MemoryBytes int64 `envconfig:"UPLOAD_MEMORY_BYTES" default:"33554432"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Storage.Bridge {
	case BridgeLocal, BridgeRemote, BridgeNone:
	default:
		return fmt.Errorf("invalid STORAGE_BRIDGE %q: want %s, %s or %s",
			c.Storage.Bridge, BridgeLocal, BridgeRemote, BridgeNone)
	}
	if c.Storage.Bridge == BridgeRemote && c.Storage.BridgeURL == "" {
		return fmt.Errorf("STORAGE_BRIDGE_URL is required for the remote bridge")
	}
	if c.Storage.Threshold <= 0 {
		return fmt.Errorf("STORAGE_THRESHOLD must be positive, got %d", c.Storage.Threshold)
	}
	if c.Storage.ChunkSize <= 0 {
		return fmt.Errorf("STORAGE_CHUNK_SIZE must be positive, got %d", c.Storage.ChunkSize)
	}
	if c.Storage.SessionBudget <= 0 {
		return fmt.Errorf("STORAGE_SESSION_BUDGET must be positive, got %d", c.Storage.SessionBudget)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			Bridge:        BridgeLocal,
			DataDir:       "./data",
			BridgeURL:     "http://127.0.0.1:8787",
			BridgeTimeout: 30 * time.Second,
			FileHost:      "http://localhost/_capacitor_file_",
			Threshold:     1 << 20,
			ChunkSize:     1 << 20,
			SessionBudget: 256 << 20,
		},
		Upload: UploadConfig{
			MaxBytes:    2 << 30,
			MemoryBytes: 32 << 20,
		},
	}
}
