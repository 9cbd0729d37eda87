// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
schema.go - Database Schema Management

Tables:
  - sequences: one row per recorded learner sequence (append-only)
  - sequence_items: ordered topics of each sequence
  - courses: the course catalog; position keeps catalog order for stable ranking
  - course_topics: ordered topic tags per course
  - predictions: stored classifier verdicts with their 11 input features
  - schema_migrations: applied versioned migrations

Ids come from DuckDB sequences so concurrent inserts never collide.
course_topics has no primary key: topics are replaced by delete and
re-insert inside one transaction, which DuckDB rejects on unique indexes.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE SEQUENCE IF NOT EXISTS sequence_ids START 1`,
	`CREATE SEQUENCE IF NOT EXISTS course_positions START 1`,
	`CREATE SEQUENCE IF NOT EXISTS prediction_ids START 1`,

	`CREATE TABLE IF NOT EXISTS sequences (
		id BIGINT PRIMARY KEY DEFAULT nextval('sequence_ids'),
		learner_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sequence_items (
		sequence_id BIGINT NOT NULL,
		position INTEGER NOT NULL,
		topic TEXT NOT NULL,
		PRIMARY KEY (sequence_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		position BIGINT NOT NULL DEFAULT nextval('course_positions'),
		title TEXT NOT NULL,
		instructor TEXT NOT NULL DEFAULT '',
		rating DOUBLE NOT NULL DEFAULT 0,
		num_reviews INTEGER NOT NULL DEFAULT 0,
		students INTEGER NOT NULL DEFAULT 0,
		is_bestseller BOOLEAN NOT NULL DEFAULT false,
		price DOUBLE NOT NULL DEFAULT 0,
		lectures INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		duration TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS course_topics (
		course_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		topic TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS predictions (
		id BIGINT PRIMARY KEY DEFAULT nextval('prediction_ids'),
		rating DOUBLE NOT NULL,
		discount DOUBLE NOT NULL,
		log_num_reviews DOUBLE NOT NULL,
		log_num_students DOUBLE NOT NULL,
		log_price DOUBLE NOT NULL,
		log_total_length_minutes DOUBLE NOT NULL,
		sqrt_sections DOUBLE NOT NULL,
		effective_price DOUBLE NOT NULL,
		popularity_score DOUBLE NOT NULL,
		price_per_hour DOUBLE NOT NULL,
		discount_category INTEGER NOT NULL,
		prediction TEXT NOT NULL,
		probability DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_course_topics_topic ON course_topics(topic)`,
	`CREATE INDEX IF NOT EXISTS idx_course_topics_course ON course_topics(course_id)`,
}
