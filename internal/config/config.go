/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Object storage backend selection.
type StorageBackend string

const (
	StorageFilesystem StorageBackend = "fs"
	StorageS3         StorageBackend = "s3"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://192.168.195.6:8080)

	DataDir    string // Root for the show cache and the filesystem object store
	LineupPath string

	// Jellyfin media server configuration
	JellyfinURL      string
	JellyfinAPIKey   string
	JellyfinUsername string
	FetchWorkers     int // Episode fan-out worker count

	// ErsatzTV configuration (browser automation target)
	ErsatzURL      string
	ErsatzHeadless bool

	// Object storage configuration
	Backend           StorageBackend
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Garage, etc.)
	S3UsePathStyle    bool   // Required for MinIO

	// Multi-instance configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NATSURL       string // Empty disables the NATS event feed
	InstanceID    string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	RequestTimeoutDisabled bool // Lets long generation runs finish over HTTP
	CatalogCacheTTL        time.Duration

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("VIDAR_ENV", "development"),
		HTTPBind:    getEnv("VIDAR_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("VIDAR_HTTP_PORT", 8080),
		BaseURL:     getEnv("VIDAR_BASE_URL", ""),

		DataDir:    getEnv("VIDAR_DATA_DIR", "./data"),
		LineupPath: getEnv("VIDAR_LINEUP", "lineup.yaml"),

		// Jellyfin configuration; the unprefixed keys are the ones the
		// original deployment scripts exported.
		JellyfinURL:      getEnvAny([]string{"VIDAR_JELLYFIN_URL", "JELLYFIN_URL"}, ""),
		JellyfinAPIKey:   getEnvAny([]string{"VIDAR_JELLYFIN_API_KEY", "JELLYFIN_API_KEY"}, ""),
		JellyfinUsername: getEnvAny([]string{"VIDAR_JELLYFIN_USERNAME", "JELLYFIN_USERNAME"}, ""),
		FetchWorkers:     getEnvInt("VIDAR_FETCH_WORKERS", 8),

		ErsatzURL:      getEnvAny([]string{"VIDAR_ERSATZ_URL", "ERSATZTV_URL"}, "http://localhost:8409"),
		ErsatzHeadless: getEnvBoolAny([]string{"VIDAR_ERSATZ_HEADLESS"}, true),

		// Object storage configuration
		Backend:           StorageBackend(getEnv("VIDAR_STORAGE_BACKEND", string(StorageFilesystem))),
		S3AccessKeyID:     getEnvAny([]string{"VIDAR_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"VIDAR_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"VIDAR_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"VIDAR_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"VIDAR_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3UsePathStyle:    getEnvBoolAny([]string{"VIDAR_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, false),

		// Multi-instance configuration
		RedisAddr:     getEnv("VIDAR_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("VIDAR_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("VIDAR_REDIS_DB", 0),
		NATSURL:       getEnv("VIDAR_NATS_URL", ""),
		InstanceID:    getEnv("VIDAR_INSTANCE_ID", ""),

		// Tracing configuration
		TracingEnabled:    getEnvBoolAny([]string{"VIDAR_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnv("VIDAR_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"VIDAR_TRACING_SAMPLE_RATE"}, 1.0),

		RequestTimeoutDisabled: getEnvBoolAny([]string{"VIDAR_REQUEST_TIMEOUT_DISABLED"}, false),
		CatalogCacheTTL:        time.Duration(getEnvInt("VIDAR_CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if cfg.Backend != StorageFilesystem && cfg.Backend != StorageS3 {
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}

	if cfg.Backend == StorageS3 && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("VIDAR_S3_BUCKET must be provided when VIDAR_STORAGE_BACKEND=s3")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if cfg.Backend == StorageS3 && (cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "") {
			return nil, fmt.Errorf("VIDAR_S3_ACCESS_KEY_ID and VIDAR_S3_SECRET_ACCESS_KEY are required for the s3 backend in production")
		}
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"JELLYFIN_TOKEN":  "use VIDAR_JELLYFIN_API_KEY (or JELLYFIN_API_KEY)",
		"ERSATZ_URL":      "use VIDAR_ERSATZ_URL (or ERSATZTV_URL)",
		"TRACING_ENABLED": "use VIDAR_TRACING_ENABLED",
		"OTLP_ENDPOINT":   "use VIDAR_OTLP_ENDPOINT",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// ShowCachePath returns where fetched show metadata is cached between runs.
func (c *Config) ShowCachePath() string {
	return filepath.Join(c.DataDir, "shows.json")
}

// StoreRoot returns the filesystem object store root.
func (c *Config) StoreRoot() string {
	return filepath.Join(c.DataDir, "store")
}

// HTTPAddr returns the bind address for the HTTP server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
