// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/coursepath/internal/catalog"
	"github.com/tomtom215/coursepath/internal/planner"
)

// maxLookupConcurrency bounds parallel catalog lookups per request.
const maxLookupConcurrency = 4

// Step is one topic of a learning path with its candidate courses.
type Step struct {
	StepNumber int              `json:"step_number"`
	Topic      string           `json:"topic"`
	Confidence float64          `json:"confidence"`
	Courses    []catalog.Course `json:"courses"`
	HasCourses bool             `json:"has_courses"`

	// CatalogUnavailable is set when the lookup for this step failed.
	CatalogUnavailable bool `json:"catalog_unavailable,omitempty"`
}

// Response is the recommendation for one target topic. It is always
// well-formed: Path and Steps are empty, never null, when nothing was found.
type Response struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	TargetTopic string   `json:"target_topic"`
	Path        []string `json:"path"`
	TotalSteps  int      `json:"total_steps"`
	Steps       []Step   `json:"steps"`
}

// Assemble attaches up to coursesPerStep ranked courses to every topic of
// res. A failed lookup only affects its own step, which is still returned
// with HasCourses false.
//
// When res.Found is false the response has Success false and a message
// naming the target.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Assemble(ctx context.Context, cat catalog.Catalog, res planner.Result, coursesPerStep int, logger zerolog.Logger) *Response {
	if !res.Found {
		return notFound(res.Target, nil)
	}

	steps := make([]Step, len(res.Path))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookupConcurrency)

	for i, hop := range res.Path {
		i, hop := i, hop
		steps[i] = Step{
			StepNumber: i + 1,
			Topic:      hop.Topic,
			Confidence: hop.Confidence,
			Courses:    []catalog.Course{},
		}
		g.Go(func() error {
			courses, err := cat.Lookup(gctx, hop.Topic, coursesPerStep)
			if err != nil {
				logger.Warn().Err(err).Str("topic", hop.Topic).Msg("catalog lookup failed")
				steps[i].CatalogUnavailable = true
				return nil
			}
			catalog.Rank(courses)
			if len(courses) > coursesPerStep {
				courses = courses[:coursesPerStep]
			}
			if len(courses) > 0 {
				steps[i].Courses = courses
				steps[i].HasCourses = true
			}
			return nil
		})
	}
	// Lookups never return errors; failures are recorded on their step.
	_ = g.Wait()

	return &Response{
		Success:     true,
		Message:     "Found learning path.",
		TargetTopic: res.Target,
		Path:        res.Topics(),
		TotalSteps:  len(steps),
		Steps:       steps,
	}
}

// notFound builds the failure response, suggesting graph topics that
// contain the target or are contained in it (case-insensitive).
func notFound(target string, known []string) *Response {
	similar := SimilarTopics(target, known)

	msg := fmt.Sprintf("Topic '%s' is not in the topic graph.", target)
	if len(similar) > 0 {
		msg = fmt.Sprintf("Topic '%s' not found. Did you mean: %s?", target, strings.Join(similar, ", "))
	}

	return &Response{
		Success:     false,
		Message:     msg,
		TargetTopic: target,
		Path:        []string{},
		TotalSteps:  0,
		Steps:       []Step{},
	}
}

// SimilarTopics returns the sorted topics t where either t or target
// contains the other, ignoring case. An empty target matches nothing.
func SimilarTopics(target string, known []string) []string {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return nil
	}

	var out []string
	for _, t := range known {
		lt := strings.ToLower(t)
		if strings.Contains(lt, needle) || strings.Contains(needle, lt) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
