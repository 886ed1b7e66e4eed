// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Metadata store backend: redis, postgres, or memory.
	// memory is for local development only; documents do not survive
	// a restart.
	MetadataBackend string `env:"METADATA_BACKEND" envDefault:"redis"`
	RedisURL        string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DatabaseURL     string `env:"DATABASE_URL"`

	// Payload storage backend: b2 or s3.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"b2"`

	// Backblaze B2 (native API)
	B2Endpoint string `env:"B2_ENDPOINT"`
	B2Bucket   string `env:"B2_BUCKET"`
	B2KeyID    string `env:"B2_KEY_ID"`
	B2AppKey   string `env:"B2_APP_KEY"`

	// S3-compatible object storage
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Upper bound on a single payload fetch from object storage.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"20s"`

	// Rate limiting on the scan path. Requires the redis metadata
	// backend; with other backends the limiter is disabled.
	RateLimitScanEnabled bool          `env:"RATE_LIMIT_SCAN_ENABLED" envDefault:"true"`
	RateLimitScanLimit   int           `env:"RATE_LIMIT_SCAN_LIMIT" envDefault:"120"`
	RateLimitScanWindow  time.Duration `env:"RATE_LIMIT_SCAN_WINDOW" envDefault:"1m"`

	// CORS configuration
	// Comma-separated list of allowed origins. Empty means allow any
	// origin, which is the intended posture for a public scan API.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Upload size limit in bytes (default 25MB)
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"26214400"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.MetadataBackend {
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when METADATA_BACKEND=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when METADATA_BACKEND=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown METADATA_BACKEND %q (want redis, postgres, or memory)", c.MetadataBackend)
	}

	switch c.StorageBackend {
	case "b2":
		if c.B2Endpoint == "" || c.B2Bucket == "" {
			return fmt.Errorf("B2_ENDPOINT and B2_BUCKET are required when STORAGE_BACKEND=b2")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want b2 or s3)", c.StorageBackend)
	}

	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
