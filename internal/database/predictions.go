// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/coursepath/internal/metrics"
	"github.com/tomtom215/coursepath/internal/predict"
)

// ErrPredictionNotFound is returned for an unknown prediction id.
var ErrPredictionNotFound = errors.New("prediction not found")

// Prediction is a stored classifier verdict with the features it was
// computed from.
type Prediction struct {
	ID int64 `json:"id"`
	predict.Features
	Prediction  string    `json:"prediction"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

const predictionColumns = `id, rating, discount, log_num_reviews, log_num_students, log_price,
	log_total_length_minutes, sqrt_sections, effective_price, popularity_score, price_per_hour,
	discount_category, prediction, probability, created_at`

// InsertPrediction stores a verdict and returns the stored row.
func (db *DB) InsertPrediction(ctx context.Context, f predict.Features, res predict.Result) (p *Prediction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "predictions", time.Since(start), err) }()

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO predictions (rating, discount, log_num_reviews, log_num_students, log_price,
			log_total_length_minutes, sqrt_sections, effective_price, popularity_score, price_per_hour,
			discount_category, prediction, probability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+predictionColumns,
		f.Rating, f.Discount, f.LogNumReviews, f.LogNumStudents, f.LogPrice,
		f.LogTotalLengthMinutes, f.SqrtSections, f.EffectivePrice, f.PopularityScore, f.PricePerHour,
		f.DiscountCategory, res.Label, res.Probability)

	p, err = scanPrediction(row)
	if err != nil {
		return nil, fmt.Errorf("insert prediction: %w", err)
	}
	return p, nil
}

// GetPrediction returns one prediction.
func (db *DB) GetPrediction(ctx context.Context, id int64) (*Prediction, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+predictionColumns+` FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("get prediction %d: %w", id, err)
	}
	return p, nil
}

// ListPredictions returns predictions newest first, skipping skip rows and
// returning at most limit.
func (db *DB) ListPredictions(ctx context.Context, skip, limit int) (out []Prediction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "predictions", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+predictionColumns+` FROM predictions ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer closeRows(rows)

	out = make([]Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

// DeletePrediction removes one prediction.
func (db *DB) DeletePrediction(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM predictions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prediction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete prediction %d: %w", id, err)
	}
	if n == 0 {
		return ErrPredictionNotFound
	}
	return nil
}

// DeleteAllPredictions removes every prediction and returns how many were
// deleted.
func (db *DB) DeleteAllPredictions(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	return res.RowsAffected()
}

// CountPredictions returns the number of stored predictions.
func (db *DB) CountPredictions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (*Prediction, error) {
	var p Prediction
	f := &p.Features
	if err := row.Scan(&p.ID, &f.Rating, &f.Discount, &f.LogNumReviews, &f.LogNumStudents, &f.LogPrice,
		&f.LogTotalLengthMinutes, &f.SqrtSections, &f.EffectivePrice, &f.PopularityScore, &f.PricePerHour,
		&f.DiscountCategory, &p.Prediction, &p.Probability, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
