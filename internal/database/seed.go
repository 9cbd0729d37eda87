// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package database

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/logging"
)

// SeedSequence is one sequence in a seed document.
type SeedSequence struct {
	LearnerID string   `json:"learner_id"`
	Topics    []string `json:"topics"`
}

// Seed is the JSON document loaded by LoadSeed.
type Seed struct {
	Courses   []catalog.Course `json:"courses"`
	Sequences []SeedSequence   `json:"sequences"`
}

// SeedStats reports what LoadSeed wrote.
type SeedStats struct {
	Courses   int
	Sequences int
}

// LoadSeedFile opens path and calls LoadSeed.
func (db *DB) LoadSeedFile(ctx context.Context, path string) (SeedStats, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return SeedStats{}, fmt.Errorf("open seed file: %w", err)
	}
	defer closeQuietly(f)
	return db.LoadSeed(ctx, f)
}

// LoadSeed upserts the seed courses and, when the sequence store is empty,
// appends the seed sequences. Running it twice does not duplicate
// sequences.
func (db *DB) LoadSeed(ctx context.Context, r io.Reader) (SeedStats, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return SeedStats{}, fmt.Errorf("decode seed: %w", err)
	}

	var stats SeedStats
	if len(seed.Courses) > 0 {
		if err := db.UpsertCourses(ctx, seed.Courses); err != nil {
			return stats, err
		}
		stats.Courses = len(seed.Courses)
	}

	existing, err := db.CountSequences(ctx)
	if err != nil {
		return stats, err
	}
	if existing > 0 {
		logging.Info().Int("existing", existing).Msg("Sequence store not empty, skipping seed sequences")
		return stats, nil
	}

	for i, s := range seed.Sequences {
		if _, err := db.AppendSequence(ctx, s.LearnerID, "seed", s.Topics); err != nil {
			return stats, fmt.Errorf("seed sequence %d: %w", i, err)
		}
		stats.Sequences++
	}
	return stats, nil
}
