// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package recommend turns planned topic paths into course-backed learning
// path recommendations and course-level "what next" suggestions.
//
// The package does not own the topic graph. It reads whatever graph the
// GraphSource currently publishes, so a request that starts before a
// re-mining run finishes is served entirely from the previous graph.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/metrics"
	"github.com/tomtom215/coursepath/internal/planner"
)

var (
	// ErrInvalidParameter is returned for out-of-range request values.
	ErrInvalidParameter = errors.New("invalid recommendation parameter")

	// ErrGraphNotReady is returned when no topic graph has been published.
	ErrGraphNotReady = errors.New("topic graph not ready")
)

// GraphSource yields the currently published topic graph, or nil.
type GraphSource interface {
	Graph() *graph.TopicGraph
}

// Config holds request defaults and limits.
type Config struct {
	CoursesPerStep int // default courses attached to each step
	MaxStepsCap    int // largest accepted max_steps
	NextTopK       int // default suggestion count for Next
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{CoursesPerStep: 3, MaxStepsCap: 10, NextTopK: 5}
}

// Request asks for a learning path. Nil pointers take the configured
// defaults; MaxSteps nil means the walk is bounded only by the graph.
type Request struct {
	TargetTopic    string `json:"target_topic" validate:"required,notblank,max=200"`
	MaxSteps       *int   `json:"max_steps,omitempty" validate:"omitempty,min=1"`
	CoursesPerStep *int   `json:"courses_per_step,omitempty" validate:"omitempty,min=1,max=50"`
}

// Suggestion is a course reachable in one transition from a source course.
type Suggestion struct {
	CourseID    string  `json:"course_id"`
	CourseTitle string  `json:"course_title"`
	Topic       string  `json:"topic"`
	Count       int     `json:"count"`
	Confidence  float64 `json:"confidence"`
}

// Service answers recommendation queries against the published graph.
type Service struct {
	graphs  GraphSource
	catalog catalog.Catalog
	cfg     Config
	logger  zerolog.Logger
}

// NewService creates a Service. Zero config fields take DefaultConfig values.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(graphs GraphSource, cat catalog.Catalog, cfg Config, logger zerolog.Logger) *Service {
	def := DefaultConfig()
	if cfg.CoursesPerStep <= 0 {
		cfg.CoursesPerStep = def.CoursesPerStep
	}
	if cfg.MaxStepsCap <= 0 {
		cfg.MaxStepsCap = def.MaxStepsCap
	}
	if cfg.NextTopK <= 0 {
		cfg.NextTopK = def.NextTopK
	}
	return &Service{
		graphs:  graphs,
		catalog: cat,
		cfg:     cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Recommend plans a path from req.TargetTopic and attaches courses to each
// step. An unknown topic is not an error: the response carries Success
// false and a similar-topic hint.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	maxSteps := 0
	if req.MaxSteps != nil {
		maxSteps = *req.MaxSteps
		if maxSteps < 1 || maxSteps > s.cfg.MaxStepsCap {
			return nil, fmt.Errorf("%w: max_steps must be in [1, %d], got %d",
				ErrInvalidParameter, s.cfg.MaxStepsCap, maxSteps)
		}
	}

	perStep := s.cfg.CoursesPerStep
	if req.CoursesPerStep != nil {
		perStep = *req.CoursesPerStep
		if perStep < 1 {
			return nil, fmt.Errorf("%w: courses_per_step must be >= 1, got %d", ErrInvalidParameter, perStep)
		}
	}

	g := s.graphs.Graph()
	if g == nil {
		return nil, ErrGraphNotReady
	}

	res := planner.Plan(g, req.TargetTopic, maxSteps)
	metrics.RecordRecommendation(res.Found)

	if !res.Found {
		s.logger.Debug().Str("target", req.TargetTopic).Msg("target topic not in graph")
		return notFound(req.TargetTopic, g.Topics()), nil
	}

	resp := Assemble(ctx, s.catalog, res, perStep, s.logger)
	s.logger.Debug().
		Str("target", req.TargetTopic).
		Int("steps", resp.TotalSteps).
		Msg("recommendation complete")
	return resp, nil
}

// Topics returns the sorted topics of the published graph, or an empty
// slice before the first graph.
func (s *Service) Topics() []string {
	return s.graphs.Graph().Topics()
}

// Search returns courses whose title contains keyword.
func (s *Service) Search(ctx context.Context, keyword string, limit int) ([]catalog.Course, error) {
	courses, err := s.catalog.Search(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return courses, nil
}

// Next suggests up to k courses that follow courseID. The course's first
// topic present in the graph is the source; each of its outgoing edges, in
// planner order, yields the best-ranked course of the destination topic
// other than courseID. Destinations without such a course are skipped.
//
// k <= 0 uses the configured default.
func (s *Service) Next(ctx context.Context, courseID string, k int) ([]Suggestion, error) {
	if k <= 0 {
		k = s.cfg.NextTopK
	}

	g := s.graphs.Graph()
	if g == nil {
		return nil, ErrGraphNotReady
	}

	src, err := s.catalog.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	topic := ""
	for _, t := range src.Topics {
		if g.Has(t) {
			topic = t
			break
		}
	}

	out := make([]Suggestion, 0, k)
	if topic == "" {
		return out, nil
	}

	for _, e := range planner.Next(g, topic, 0) {
		if len(out) == k {
			break
		}
		// One extra in case the source course is the top result.
		courses, err := s.catalog.Lookup(ctx, e.To, 2)
		if err != nil {
			if errors.Is(err, catalog.ErrUnavailable) {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("topic", e.To).Msg("catalog lookup failed")
			continue
		}
		catalog.Rank(courses)
		for _, c := range courses {
			if c.ID == courseID {
				continue
			}
			out = append(out, Suggestion{
				CourseID:    c.ID,
				CourseTitle: c.Title,
				Topic:       e.To,
				Count:       e.Count,
				Confidence:  e.Confidence,
			})
			break
		}
	}
	return out, nil
}
