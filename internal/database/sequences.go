// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/coursepath/internal/metrics"
	"github.com/tomtom215/coursepath/internal/mining"
)

// ErrInvalidSequence is returned by AppendSequence for an empty topic list
// or a blank topic.
var ErrInvalidSequence = errors.New("invalid sequence")

// AppendSequence records one learner sequence and returns its id. The
// sequence and its items are written in a single transaction.
func (db *DB) AppendSequence(ctx context.Context, learnerID, source string, topics []string) (id int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "sequences", time.Since(start), err) }()

	if len(topics) == 0 {
		return 0, fmt.Errorf("%w: no topics", ErrInvalidSequence)
	}
	clean := make([]string, len(topics))
	for i, t := range topics {
		clean[i] = strings.TrimSpace(t)
		if clean[i] == "" {
			return 0, fmt.Errorf("%w: blank topic at position %d", ErrInvalidSequence, i)
		}
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx,
		`INSERT INTO sequences (learner_id, source) VALUES (?, ?) RETURNING id`,
		learnerID, source).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sequence_items (sequence_id, position, topic) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare sequence items: %w", err)
	}
	defer closeQuietly(stmt)

	for pos, topic := range clean {
		if _, err = stmt.ExecContext(ctx, id, pos, topic); err != nil {
			return 0, fmt.Errorf("insert sequence item %d: %w", pos, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return id, nil
}

// AllSequences returns every recorded sequence ordered by id.
func (db *DB) AllSequences(ctx context.Context) (seqs []mining.Sequence, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "sequence_items", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT sequence_id, topic FROM sequence_items ORDER BY sequence_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer closeRows(rows)

	seqs = make([]mining.Sequence, 0)
	var (
		current int64
		seq     mining.Sequence
	)
	for rows.Next() {
		var (
			id    int64
			topic string
		)
		if err := rows.Scan(&id, &topic); err != nil {
			return nil, fmt.Errorf("scan sequence item: %w", err)
		}
		if seq != nil && id != current {
			seqs = append(seqs, seq)
			seq = nil
		}
		current = id
		seq = append(seq, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}
	if seq != nil {
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

// CountSequences returns the number of recorded sequences.
func (db *DB) CountSequences(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sequences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sequences: %w", err)
	}
	return n, nil
}
