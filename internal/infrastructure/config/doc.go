// Package config provides 12-factor configuration for the storage backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server can override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Storage: Bridge selection, data directory, threshold and chunk size
//   - Upload: Multipart upload limits
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORAGE_BRIDGE, STORAGE_DATA_DIR, STORAGE_BRIDGE_URL, STORAGE_BRIDGE_TIMEOUT
//   - STORAGE_FILE_HOST, STORAGE_THRESHOLD, STORAGE_CHUNK_SIZE, STORAGE_SESSION_BUDGET
//   - UPLOAD_MAX_BYTES, UPLOAD_MEMORY_BYTES
package config
