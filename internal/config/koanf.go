package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/realrushil/website/internal/core/domain"
)

// ConfigPathEnvVar overrides where the optional YAML file is read from.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Environment:     "production",
			Platform:        "Go Server",
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Store: StoreConfig{
			SQLitePath: "probe.db",
			HistoryCap: domain.DefaultHistoryCap,
			Timeout:    2 * time.Second,
		},
		Ingest: IngestConfig{
			MaxRequests:   10,
			Window:        time.Minute,
			SweepInterval: time.Minute,
		},
		Status: StatusConfig{
			RateLimit: 60,
			Theme:     "gauge",
		},
		Occupancy: OccupancyConfig{
			MaxCapacity: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings lists every recognized environment variable. Anything else in
// the environment is ignored.
var envMappings = map[string]string{
	"port":               "server.port",
	"host":               "server.host",
	"node_env":           "server.environment",
	"app_env":            "server.environment",
	"platform":           "server.platform",
	"shutdown_timeout":   "server.shutdown_timeout",
	"max_body_bytes":     "server.max_body_bytes",
	"trust_proxy":        "server.trust_proxy",
	"redis_url":          "store.redis_url",
	"store_backend":      "store.backend",
	"sqlite_path":        "store.sqlite_path",
	"history_cap":        "store.history_cap",
	"store_timeout":      "store.timeout",
	"ingest_rate_limit":  "ingest.max_requests",
	"ingest_rate_window": "ingest.window",
	"ingest_sweep":       "ingest.sweep_interval",
	"status_rate_limit":  "status.rate_limit",
	"dashboard_theme":    "status.theme",
	"max_capacity":       "occupancy.max_capacity",
	"log_level":          "logging.level",
	"log_format":         "logging.format",
	"tracing_enabled":    "telemetry.tracing",
}

func envTransform(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// Load layers defaults, an optional YAML file and the environment, then
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.resolveBackend()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
