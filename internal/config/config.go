// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package config loads Coursepath configuration with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML (CONFIG_PATH, ./config.yaml, /etc/coursepath/config.yaml)
//  3. Environment Variables: legacy names such as HTTP_PORT or MINING_MIN_SUPPORT
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Mining     MiningConfig     `koanf:"mining"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Snapshot   SnapshotConfig   `koanf:"snapshot"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU

	// SeedFile is a JSON document with courses and sequences loaded into an
	// empty database at startup. Empty disables seeding.
	SeedFile string `koanf:"seed_file"`
}

// MiningConfig holds the default mining parameters and the remine schedule.
//
// Environment Variables:
//   - MINING_MIN_SUPPORT: default support ratio threshold (default: 0.1)
//   - MINING_MAX_LEN: default maximum pattern length (default: 3)
//   - MINING_TOP_K: default pattern cap (default: 100)
//   - MINING_SCHEDULE_ENABLED: re-mine on an interval (default: true)
//   - MINING_INTERVAL: interval between scheduled runs (default: 1h)
//   - MINING_ON_STARTUP: run once when the service starts (default: true)
//   - MINING_RUN_TIMEOUT: upper bound for a single run (default: 5m)
type MiningConfig struct {
	MinSupport      float64       `koanf:"min_support"`
	MaxLen          int           `koanf:"max_len"`
	TopK            int           `koanf:"top_k"`
	ScheduleEnabled bool          `koanf:"schedule_enabled"`
	Interval        time.Duration `koanf:"interval"`
	MineOnStartup   bool          `koanf:"mine_on_startup"`
	RunTimeout      time.Duration `koanf:"run_timeout"`
}

// RecommendConfig holds request-path defaults for path planning.
type RecommendConfig struct {
	CoursesPerStep int `koanf:"courses_per_step"`
	MaxStepsCap    int `koanf:"max_steps_cap"`
	NextTopK       int `koanf:"next_top_k"`
	SearchLimit    int `koanf:"search_limit"`
}

// CatalogConfig holds circuit breaker and cache settings for catalog
// lookups. CacheSize 0 disables the lookup cache.
type CatalogConfig struct {
	CacheSize          int           `koanf:"cache_size"`
	CacheTTL           time.Duration `koanf:"cache_ttl"`
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"` // requests allowed while half-open
	BreakerInterval    time.Duration `koanf:"breaker_interval"`     // closed-state counter reset period
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`      // open -> half-open delay
	BreakerFailures    uint32        `koanf:"breaker_failures"`     // consecutive failures before opening
}

// ClassifierConfig configures the external bestseller classifier.
// When disabled, predictions fall back to a neutral 0.5 probability.
type ClassifierConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	Burst     int           `koanf:"burst"`
}

// SnapshotConfig controls BadgerDB persistence of the published topic graph.
type SnapshotConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// EventsConfig selects the Watermill transport.
//
// Backend "memory" uses the in-process gochannel pub/sub. Backend "nats"
// requires a binary built with -tags nats.
type EventsConfig struct {
	Backend               string        `koanf:"backend"`
	NATSURL               string        `koanf:"nats_url"`
	EmbeddedServer        bool          `koanf:"embedded_server"`
	StoreDir              string        `koanf:"store_dir"`
	DurableName           string        `koanf:"durable_name"`
	GraphPublishedTopic   string        `koanf:"graph_published_topic"`
	SequenceRecordedTopic string        `koanf:"sequence_recorded_topic"`
	CloseTimeout          time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds API protection settings.
//
// When JWTSecret is empty, admin routes are open. Otherwise they require a
// bearer token signed with JWTSecret whose role claim is "admin".
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"` // lifetime of tokens minted by coursepathctl
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AuthEnabled reports whether admin routes require a token.
func (s SecurityConfig) AuthEnabled() bool {
	return s.JWTSecret != ""
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from all sources in the order documented on the
// package. See LoadWithKoanf for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
