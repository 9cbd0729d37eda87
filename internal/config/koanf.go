// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

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
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/coursepath/config.yaml",
	"/etc/coursepath/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all defaults.
// These are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/coursepath.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			SeedFile:  "",
		},
		Mining: MiningConfig{
			MinSupport:      0.1,
			MaxLen:          3,
			TopK:            100,
			ScheduleEnabled: true,
			Interval:        time.Hour,
			MineOnStartup:   true,
			RunTimeout:      5 * time.Minute,
		},
		Recommend: RecommendConfig{
			CoursesPerStep: 3,
			MaxStepsCap:    10,
			NextTopK:       5,
			SearchLimit:    10,
		},
		Catalog: CatalogConfig{
			CacheSize:          1024,
			CacheTTL:           5 * time.Minute,
			BreakerMaxRequests: 3,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
			BreakerFailures:    5,
		},
		Classifier: ClassifierConfig{
			Enabled:   false,
			URL:       "",
			Timeout:   5 * time.Second,
			RateLimit: 10,
			Burst:     20,
		},
		Snapshot: SnapshotConfig{
			Enabled: true,
			Path:    "/data/snapshots",
		},
		Events: EventsConfig{
			Backend:               "memory",
			NATSURL:               "nats://127.0.0.1:4222",
			EmbeddedServer:        true,
			StoreDir:              "/data/nats/jetstream",
			DurableName:           "coursepath",
			GraphPublishedTopic:   "coursepath.graph.published",
			SequenceRecordedTopic: "coursepath.sequence.recorded",
			CloseTimeout:          30 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File (optional)
//  3. Environment Variables
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MINING_MIN_SUPPORT -> mining.min_support, etc.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices.
// Env vars always arrive as strings; YAML values are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_file":         "database.seed_file",

	// Mining
	"mining_min_support":      "mining.min_support",
	"mining_max_len":          "mining.max_len",
	"mining_top_k":            "mining.top_k",
	"mining_schedule_enabled": "mining.schedule_enabled",
	"mining_interval":         "mining.interval",
	"mining_on_startup":       "mining.mine_on_startup",
	"mining_run_timeout":      "mining.run_timeout",

	// Recommendation
	"recommend_courses_per_step": "recommend.courses_per_step",
	"recommend_max_steps_cap":    "recommend.max_steps_cap",
	"recommend_next_top_k":       "recommend.next_top_k",
	"recommend_search_limit":     "recommend.search_limit",

	// Catalog breaker and cache
	"catalog_cache_size":           "catalog.cache_size",
	"catalog_cache_ttl":            "catalog.cache_ttl",
	"catalog_breaker_max_requests": "catalog.breaker_max_requests",
	"catalog_breaker_interval":     "catalog.breaker_interval",
	"catalog_breaker_timeout":      "catalog.breaker_timeout",
	"catalog_breaker_failures":     "catalog.breaker_failures",

	// Classifier
	"classifier_enabled":    "classifier.enabled",
	"classifier_url":        "classifier.url",
	"classifier_timeout":    "classifier.timeout",
	"classifier_rate_limit": "classifier.rate_limit",
	"classifier_burst":      "classifier.burst",

	// Snapshot
	"snapshot_enabled": "snapshot.enabled",
	"snapshot_path":    "snapshot.path",

	// Events
	"events_backend":        "events.backend",
	"nats_url":              "events.nats_url",
	"nats_embedded":         "events.embedded_server",
	"nats_store_dir":        "events.store_dir",
	"nats_durable_name":     "events.durable_name",
	"events_graph_topic":    "events.graph_published_topic",
	"events_sequence_topic": "events.sequence_recorded_topic",
	"events_close_timeout":  "events.close_timeout",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_token_ttl":       "security.token_ttl",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps legacy environment variable names to koanf paths.
// Unmapped keys return "" so unrelated environment variables are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - MINING_MIN_SUPPORT -> mining.min_support
//   - CORS_ORIGINS -> security.cors_origins
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
