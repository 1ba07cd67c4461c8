// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Share storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds every server setting. Each field maps to one environment
// variable.
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	StaticPath      string        `env:"STATIC_PATH"`
	AllowedOrigin   string        `env:"ALLOWED_ORIGIN" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// ShareBackend selects the share store: "sqlite" or "redis".
	ShareBackend  string        `env:"SHARE_BACKEND" envDefault:"sqlite"`
	DBPath        string        `env:"DB_PATH" envDefault:"./data/shares.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ShareTTL      time.Duration `env:"SHARE_TTL" envDefault:"720h"`
	PurgeInterval time.Duration `env:"SHARE_PURGE_INTERVAL" envDefault:"1h"`
	TokenSecret   string        `env:"SHARE_TOKEN_SECRET"`
	PublicURL     string        `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`

	// OCRURL is the receipt parser endpoint. The receipt route answers 503
	// when it is empty.
	OCRURL           string        `env:"OCR_URL"`
	OCRTimeout       time.Duration `env:"OCR_TIMEOUT" envDefault:"60s"`
	OCRMaxConcurrent int64         `env:"OCR_MAX_CONCURRENT" envDefault:"3"`
	MaxUploadBytes   int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that env tags cannot express.
func (c *Config) Validate() error {
	switch c.ShareBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown SHARE_BACKEND %q", c.ShareBackend)
	}
	if c.TokenSecret == "" {
		return errors.New("SHARE_TOKEN_SECRET is required")
	}
	if c.ShareTTL < 0 {
		return errors.New("SHARE_TTL must not be negative")
	}
	if c.OCRMaxConcurrent < 1 {
		return errors.New("OCR_MAX_CONCURRENT must be at least 1")
	}
	if c.MaxUploadBytes < 1 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
