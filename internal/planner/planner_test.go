// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/coursepath/internal/graph"
	"github.com/tomtom215/coursepath/internal/mining"
)

func build(t *testing.T, patterns ...mining.Pattern) *graph.TopicGraph {
	t.Helper()
	g, err := graph.Build(patterns)
	require.NoError(t, err)
	return g
}

func pat(support int, topics ...string) mining.Pattern {
	return mining.Pattern{Sequence: topics, Support: support}
}

func TestPlanFollowsHighestConfidence(t *testing.T) {
	t.Parallel()

	g := build(t, pat(2, "A", "B"), pat(1, "A", "C"))

	r := Plan(g, "A", 1)
	require.True(t, r.Found)
	assert.Equal(t, []string{"A", "B"}, r.Topics())
	assert.Equal(t, 1, r.Steps())
	assert.InDelta(t, 2.0/3.0, r.Path[1].Confidence, 1e-12)
	assert.Equal(t, 2, r.Path[1].Count)
	assert.Equal(t, 1.0, r.Path[0].Confidence)
}

func TestPlanNotFound(t *testing.T) {
	t.Parallel()

	g := build(t, pat(2, "A", "B"))

	r := Plan(g, "Z", 3)
	assert.False(t, r.Found)
	assert.Empty(t, r.Path)
	assert.Equal(t, "Z", r.Target)

	r = Plan(nil, "A", 3)
	assert.False(t, r.Found)
}

func TestPlanStopsOnCycle(t *testing.T) {
	t.Parallel()

	// A->B->C->A cycle; the walk must not revisit A.
	g := build(t, pat(3, "A", "B", "C", "A"))

	r := Plan(g, "A", 0)
	assert.Equal(t, []string{"A", "B", "C"}, r.Topics())
}

func TestPlanDoesNotFallBackAfterCycle(t *testing.T) {
	t.Parallel()

	// From B the best edge returns to A, so the walk stops even though
	// B->D exists.
	g := build(t, pat(5, "A", "B", "A"), pat(1, "B", "D"))

	r := Plan(g, "A", 0)
	assert.Equal(t, []string{"A", "B"}, r.Topics())
}

func TestPlanStopsAtSink(t *testing.T) {
	t.Parallel()

	g := build(t, pat(1, "A", "B", "C"))

	r := Plan(g, "A", 10)
	assert.Equal(t, []string{"A", "B", "C"}, r.Topics())

	r = Plan(g, "C", 10)
	assert.True(t, r.Found)
	assert.Equal(t, []string{"C"}, r.Topics())
	assert.Zero(t, r.Steps())
}

func TestPlanTieBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []mining.Pattern
		want     string
	}{
		{
			name:     "equal confidence and count picks smallest topic",
			patterns: []mining.Pattern{pat(2, "A", "Y"), pat(2, "A", "X")},
			want:     "X",
		},
		{
			name:     "higher confidence wins over name",
			patterns: []mining.Pattern{pat(1, "A", "B"), pat(3, "A", "Z")},
			want:     "Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Plan(build(t, tt.patterns...), "A", 1)
			require.Len(t, r.Path, 2)
			assert.Equal(t, tt.want, r.Path[1].Topic)
		})
	}
}

func TestPlanRespectsMaxSteps(t *testing.T) {
	t.Parallel()

	g := build(t, pat(1, "A", "B", "C", "D", "E"))

	for steps := 1; steps <= 4; steps++ {
		r := Plan(g, "A", steps)
		assert.Equal(t, steps, r.Steps())
		assert.Len(t, r.Path, steps+1)
	}
}

func TestPlanNeverRepeatsTopics(t *testing.T) {
	t.Parallel()

	g := build(t,
		pat(4, "A", "B", "C"),
		pat(3, "C", "A"),
		pat(2, "B", "B"),
		pat(6, "C", "D", "B"),
	)

	for _, topic := range g.Topics() {
		r := Plan(g, topic, 0)
		seen := map[string]bool{}
		for _, h := range r.Path {
			assert.False(t, seen[h.Topic], "duplicate %s in path from %s", h.Topic, topic)
			seen[h.Topic] = true
		}
	}
}

func TestNext(t *testing.T) {
	t.Parallel()

	g := build(t, pat(3, "A", "B"), pat(2, "A", "C"), pat(1, "A", "D"))

	next := Next(g, "A", 2)
	require.Len(t, next, 2)
	assert.Equal(t, "B", next[0].To)
	assert.Equal(t, "C", next[1].To)

	assert.Len(t, Next(g, "A", 0), 3)
	assert.Empty(t, Next(g, "B", 5))
	assert.NotNil(t, Next(g, "missing", 5))
}
