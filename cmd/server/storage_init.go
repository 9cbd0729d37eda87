// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/database"
	"github.com/tomtom215/coursepath/internal/logging"
	"github.com/tomtom215/coursepath/internal/snapshot"
)

// storageComponents holds the persistent stores.
type storageComponents struct {
	db        *database.DB
	catalog   catalog.Catalog // breaker, optionally behind the lookup cache
	snapshots *snapshot.Store // nil when snapshots are disabled
}

// initStorage opens DuckDB, loads the seed file and opens the snapshot
// store. A snapshot store that fails to open is logged and skipped: the
// server still works, it just starts without a graph.
func initStorage(ctx context.Context, cfg *config.Config) (*storageComponents, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	if cfg.Database.SeedFile != "" {
		stats, err := db.LoadSeedFile(ctx, cfg.Database.SeedFile)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		logging.Info().
			Str("file", cfg.Database.SeedFile).
			Int("courses", stats.Courses).
			Int("sequences", stats.Sequences).
			Msg("Seed data loaded")
	}

	var cat catalog.Catalog = catalog.NewBreaker(db, catalog.BreakerConfig{
		Name:                "catalog",
		MaxRequests:         cfg.Catalog.BreakerMaxRequests,
		Interval:            cfg.Catalog.BreakerInterval,
		Timeout:             cfg.Catalog.BreakerTimeout,
		ConsecutiveFailures: cfg.Catalog.BreakerFailures,
	})
	if cfg.Catalog.CacheSize > 0 {
		cat = catalog.NewCached(cat, cfg.Catalog.CacheSize, cfg.Catalog.CacheTTL)
	}
	s := &storageComponents{db: db, catalog: cat}

	if !cfg.Snapshot.Enabled {
		logging.Info().Msg("Graph snapshots disabled (SNAPSHOT_ENABLED=false)")
		return s, nil
	}
	snaps, err := snapshot.Open(snapshot.Config{Path: cfg.Snapshot.Path, SyncWrites: true})
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.Snapshot.Path).Msg("Failed to open snapshot store, continuing without warm start")
		return s, nil
	}
	s.snapshots = snaps
	return s, nil
}

// Close closes the snapshot store, then the database.
func (s *storageComponents) Close() {
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing snapshot store")
		}
	}
	closeDB(s.db)
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
