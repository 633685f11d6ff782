package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Status    StatusConfig    `koanf:"status"`
	Occupancy OccupancyConfig `koanf:"occupancy"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Environment     string        `koanf:"environment"`
	Platform        string        `koanf:"platform" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	// TrustProxy keys rate limits on X-Forwarded-For. Enable only behind a
	// proxy that appends the client address.
	TrustProxy bool `koanf:"trust_proxy"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	Backend    string        `koanf:"backend" validate:"omitempty,oneof=memory redis sqlite"`
	RedisURL   string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	SQLitePath string        `koanf:"sqlite_path" validate:"required_if=Backend sqlite"`
	HistoryCap int           `koanf:"history_cap" validate:"min=1,max=1000"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
}

// IngestConfig is the admission policy for sensor posts.
type IngestConfig struct {
	MaxRequests   int           `koanf:"max_requests" validate:"min=1"`
	Window        time.Duration `koanf:"window" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

type StatusConfig struct {
	RateLimit int    `koanf:"rate_limit" validate:"min=0"` // per minute per IP, 0 disables
	Theme     string `koanf:"theme" validate:"oneof=gauge classic"`
}

type OccupancyConfig struct {
	MaxCapacity int `koanf:"max_capacity" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type TelemetryConfig struct {
	Tracing bool `koanf:"tracing"`
}

// IsDevelopment reports whether error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// resolveBackend picks redis when a URL is configured and no backend was
// named explicitly.
func (c *Config) resolveBackend() {
	if c.Store.Backend != "" {
		c.Store.Backend = strings.ToLower(c.Store.Backend)
		return
	}
	if c.Store.RedisURL != "" {
		c.Store.Backend = "redis"
	} else {
		c.Store.Backend = "memory"
	}
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
