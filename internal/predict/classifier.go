// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/metrics"
)

// Class labels, keyed by model output class.
const (
	LabelNotBestseller = "Not Bestseller"
	LabelBestseller    = "Bestseller"
)

var labels = map[int]string{
	0: LabelNotBestseller,
	1: LabelBestseller,
}

// ErrUnavailable is returned when the classifier cannot be reached or its
// circuit breaker is open.
var ErrUnavailable = errors.New("classifier unavailable")

// Result is a classifier verdict.
type Result struct {
	Class       int     `json:"class"`
	Label       string  `json:"prediction"`
	Probability float64 `json:"probability"`
	Fallback    bool    `json:"fallback,omitempty"`
}

// Classifier predicts whether a course will be a bestseller.
type Classifier interface {
	Predict(ctx context.Context, f Features) (Result, error)
}

// Label returns the label of a class, or an error for unknown classes.
func Label(class int) (string, error) {
	l, ok := labels[class]
	if !ok {
		return "", fmt.Errorf("unknown class %d", class)
	}
	return l, nil
}

// ClassOf returns the class of a label.
func ClassOf(label string) (int, error) {
	for c, l := range labels {
		if l == label {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", label)
}

// Fallback answers "Not Bestseller" with probability 0.5. It is used when
// no classifier is configured.
type Fallback struct{}

// Predict implements Classifier.
func (Fallback) Predict(context.Context, Features) (Result, error) {
	metrics.RecordClassifierCall("fallback")
	return Result{Class: 0, Label: LabelNotBestseller, Probability: 0.5, Fallback: true}, nil
}

// withFallback serves the Fallback verdict while primary is unavailable.
type withFallback struct {
	primary Classifier
	logger  zerolog.Logger
}

// WithFallback wraps primary so ErrUnavailable degrades to the Fallback
// verdict. Other errors are returned unchanged.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WithFallback(primary Classifier, logger zerolog.Logger) Classifier {
	return &withFallback{primary: primary, logger: logger}
}

func (w *withFallback) Predict(ctx context.Context, f Features) (Result, error) {
	res, err := w.primary.Predict(ctx, f)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return Result{}, err
	}
	w.logger.Warn().Err(err).Msg("classifier unavailable, using fallback verdict")
	return Fallback{}.Predict(ctx, f)
}
