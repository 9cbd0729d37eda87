// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package graph

import (
	"context"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/coursepath/internal/mining"
)

func pat(support int, topics ...string) mining.Pattern {
	return mining.Pattern{Sequence: topics, Support: support}
}

func TestBuildConfidence(t *testing.T) {
	t.Parallel()

	g, err := Build([]mining.Pattern{pat(2, "A", "B"), pat(1, "A", "C")})
	require.NoError(t, err)

	edges := g.Outgoing("A")
	require.Len(t, edges, 2)
	assert.Equal(t, "B", edges[0].To)
	assert.Equal(t, 2, edges[0].Count)
	assert.InDelta(t, 2.0/3.0, edges[0].Confidence, 1e-12)
	assert.Equal(t, "C", edges[1].To)
	assert.InDelta(t, 1.0/3.0, edges[1].Confidence, 1e-12)

	n, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, 3, n.OutCount)

	assert.Equal(t, []string{"A", "B", "C"}, g.Topics())
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	g, err := Build(nil)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBuildKeepsIsolatedAndCycles(t *testing.T) {
	t.Parallel()

	g, err := Build([]mining.Pattern{
		pat(4, "Go"),
		pat(2, "A", "B", "A"),
		pat(1, "B", "B"),
	})
	require.NoError(t, err)

	assert.True(t, g.Has("Go"))
	assert.Empty(t, g.Outgoing("Go"))

	// A->B (2), B->A (2), B->B (1)
	out := g.Outgoing("B")
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].To)
	assert.InDelta(t, 2.0/3.0, out[0].Confidence, 1e-12)
	assert.Equal(t, "B", out[1].To)
	assert.Equal(t, 1, out[1].Count)
}

func TestBuildLongerPatternsWeightEveryTransition(t *testing.T) {
	t.Parallel()

	g, err := Build([]mining.Pattern{pat(5, "A", "B", "C"), pat(3, "B", "C")})
	require.NoError(t, err)

	out := g.Outgoing("B")
	require.Len(t, out, 1)
	assert.Equal(t, 8, out[0].Count)
	assert.Equal(t, 1.0, out[0].Confidence)
}

func TestConfidenceSumsToOne(t *testing.T) {
	t.Parallel()

	seqs := []mining.Sequence{
		{"SQL", "Python", "Pandas", "Machine Learning"},
		{"Python", "Pandas", "Statistics"},
		{"Python", "Flask", "Docker"},
		{"Statistics", "Machine Learning", "Deep Learning"},
		{"Python", "Machine Learning", "Deep Learning"},
		{"SQL", "Statistics", "Python"},
		{"Deep Learning", "Python"},
	}
	patterns, err := mining.Mine(context.Background(), seqs, mining.Params{MinSupport: 0.1, MaxLen: 4, TopK: 1000})
	require.NoError(t, err)

	g, err := Build(patterns)
	require.NoError(t, err)

	for _, topic := range g.Topics() {
		out := g.Outgoing(topic)
		if len(out) == 0 {
			continue
		}
		sum := 0.0
		for _, e := range out {
			assert.Greater(t, e.Count, 0)
			sum += e.Confidence
		}
		assert.LessOrEqual(t, math.Abs(sum-1.0), 1e-9, "confidences out of %s sum to %v", topic, sum)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	t.Parallel()

	patterns := []mining.Pattern{pat(7, "A", "B"), pat(3, "A", "C"), pat(11, "C", "A"), pat(2, "A", "D")}

	g1, err := Build(patterns)
	require.NoError(t, err)
	g2, err := Build(patterns)
	require.NoError(t, err)

	e1, e2 := g1.Edges(), g2.Edges()
	require.Equal(t, len(e1), len(e2))
	for i := range e1 {
		assert.Equal(t, math.Float64bits(e1[i].Confidence), math.Float64bits(e2[i].Confidence))
		assert.Equal(t, e1[i], e2[i])
	}
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	g, err := Build([]mining.Pattern{pat(2, "A", "B"), pat(1, "A", "C"), pat(3, "Z")})
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded TopicGraph
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, g.Topics(), decoded.Topics())
	assert.Equal(t, g.Edges(), decoded.Edges())
	assert.True(t, decoded.Has("Z"))
}

func TestCodecRejectsDanglingEdge(t *testing.T) {
	t.Parallel()

	var g TopicGraph
	err := json.Unmarshal([]byte(`{"topics":["A"],"edges":[{"from":"A","to":"B","count":1}]}`), &g)
	assert.Error(t, err)
}

func TestNilGraphAccessors(t *testing.T) {
	t.Parallel()

	var g *TopicGraph
	assert.False(t, g.Has("A"))
	assert.Equal(t, []string{}, g.Topics())
	assert.Nil(t, g.Outgoing("A"))
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
}
