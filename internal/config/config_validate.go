// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package config

import (
	"fmt"
	"time"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateDatabase,
		c.validateMining,
		c.validateRecommend,
		c.validateCatalog,
		c.validateClassifier,
		c.validateSnapshot,
		c.validateEvents,
		c.validateSecurity,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

// Mining limits
const (
	miningMaxLen      = 20
	miningMaxTopK     = 10000
	miningMinInterval = time.Minute
)

// validateMining rejects defaults the miner itself would refuse.
func (c *Config) validateMining() error {
	m := c.Mining
	if m.MinSupport <= 0 || m.MinSupport > 1 {
		return fmt.Errorf("MINING_MIN_SUPPORT must be in (0, 1], got %v", m.MinSupport)
	}
	if m.MaxLen < 1 || m.MaxLen > miningMaxLen {
		return fmt.Errorf("MINING_MAX_LEN must be between 1 and %d", miningMaxLen)
	}
	if m.TopK < 1 || m.TopK > miningMaxTopK {
		return fmt.Errorf("MINING_TOP_K must be between 1 and %d", miningMaxTopK)
	}
	if m.ScheduleEnabled && m.Interval < miningMinInterval {
		return fmt.Errorf("MINING_INTERVAL must be at least %v", miningMinInterval)
	}
	if m.RunTimeout <= 0 {
		return fmt.Errorf("MINING_RUN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.CoursesPerStep < 1 || r.CoursesPerStep > 50 {
		return fmt.Errorf("RECOMMEND_COURSES_PER_STEP must be between 1 and 50")
	}
	if r.MaxStepsCap < 1 || r.MaxStepsCap > 100 {
		return fmt.Errorf("RECOMMEND_MAX_STEPS_CAP must be between 1 and 100")
	}
	if r.NextTopK < 1 {
		return fmt.Errorf("RECOMMEND_NEXT_TOP_K must be >= 1")
	}
	if r.SearchLimit < 1 {
		return fmt.Errorf("RECOMMEND_SEARCH_LIMIT must be >= 1")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.BreakerFailures < 1 {
		return fmt.Errorf("CATALOG_BREAKER_FAILURES must be >= 1")
	}
	if c.Catalog.BreakerTimeout <= 0 {
		return fmt.Errorf("CATALOG_BREAKER_TIMEOUT must be positive")
	}
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("CATALOG_CACHE_SIZE must be >= 0")
	}
	if c.Catalog.CacheSize > 0 && c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

// validateClassifier validates classifier configuration (only if enabled)
func (c *Config) validateClassifier() error {
	if !c.Classifier.Enabled {
		return nil
	}
	if c.Classifier.URL == "" {
		return fmt.Errorf("CLASSIFIER_URL is required when CLASSIFIER_ENABLED=true")
	}
	if err := validateHTTPURL(c.Classifier.URL, "CLASSIFIER_URL"); err != nil {
		return fmt.Errorf("CLASSIFIER_URL is invalid: %w", err)
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	if c.Classifier.RateLimit <= 0 || c.Classifier.Burst < 1 {
		return fmt.Errorf("CLASSIFIER_RATE_LIMIT and CLASSIFIER_BURST must be positive")
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if c.Snapshot.Enabled && c.Snapshot.Path == "" {
		return fmt.Errorf("SNAPSHOT_PATH is required when SNAPSHOT_ENABLED=true")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case "memory":
	case "nats":
		if !c.Events.EmbeddedServer {
			if err := validateNATSURL(c.Events.NATSURL); err != nil {
				return fmt.Errorf("NATS_URL is invalid: %w", err)
			}
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: memory, nats")
	}
	if c.Events.GraphPublishedTopic == "" || c.Events.SequenceRecordedTopic == "" {
		return fmt.Errorf("event topics must not be empty")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minJWTSecretLength   = 32
)

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.AuthEnabled() && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with JWT_SECRET set; " +
			"set specific origins such as CORS_ORIGINS=https://app.example.com")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if the CORS setup deserves a startup warning.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthEnabled() && c.hasWildcardCORS()
}
