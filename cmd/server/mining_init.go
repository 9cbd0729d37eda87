// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"context"
	"errors"

	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/logging"
	"github.com/tomtom215/coursepath/internal/snapshot"
)

// initCoordinator creates the mining coordinator, restores the latest
// snapshot and registers the publish hooks. Hooks run in registration
// order: the snapshot is saved before the event announces it.
func initCoordinator(ctx context.Context, cfg *config.Config, storage *storageComponents, events *eventComponents) *coordinator.Coordinator {
	coord := coordinator.New(storage.db, coordinator.Config{RunTimeout: cfg.Mining.RunTimeout}, logging.WithComponent("coordinator"))

	if storage.snapshots != nil {
		restoreSnapshot(ctx, coord, storage.snapshots)
		coord.OnPublish(storage.snapshots.Save)
	}
	coord.OnPublish(events.publisher.PublishGraph)

	logging.Info().
		Float64("min_support", cfg.Mining.MinSupport).
		Int("max_len", cfg.Mining.MaxLen).
		Int("top_k", cfg.Mining.TopK).
		Dur("run_timeout", cfg.Mining.RunTimeout).
		Msg("Mining coordinator initialized")
	return coord
}

func restoreSnapshot(ctx context.Context, coord *coordinator.Coordinator, store *snapshot.Store) {
	snap, err := store.Latest(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		logging.Info().Msg("No graph snapshot stored, waiting for first mining run")
	case err != nil:
		logging.Warn().Err(err).Msg("Failed to load graph snapshot")
	case coord.Restore(snap):
		logging.Info().
			Uint64("version", snap.Version).
			Str("run_id", snap.RunID).
			Int("patterns", len(snap.Patterns)).
			Time("published_at", snap.PublishedAt).
			Msg("Topic graph restored from snapshot")
	default:
		logging.Warn().Uint64("version", snap.Version).Msg("Graph snapshot rejected")
	}
}
