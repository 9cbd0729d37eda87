// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package mining

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(patterns []Pattern, topics ...string) (Pattern, bool) {
	for _, p := range patterns {
		if fmt.Sprint(p.Sequence) == fmt.Sprint(topics) {
			return p, true
		}
	}
	return Pattern{}, false
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"valid", Params{MinSupport: 0.5, MaxLen: 2, TopK: 10}, false},
		{"support of one", Params{MinSupport: 1, MaxLen: 1, TopK: 1}, false},
		{"zero support", Params{MinSupport: 0, MaxLen: 2, TopK: 10}, true},
		{"negative support", Params{MinSupport: -0.1, MaxLen: 2, TopK: 10}, true},
		{"support above one", Params{MinSupport: 1.2, MaxLen: 2, TopK: 10}, true},
		{"zero max len", Params{MinSupport: 0.5, MaxLen: 0, TopK: 10}, true},
		{"zero top k", Params{MinSupport: 0.5, MaxLen: 2, TopK: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMineThresholdScenario(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{
		{"A", "B", "C"},
		{"A", "B", "D"},
		{"A", "B", "C"},
	}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.5, MaxLen: 2, TopK: 100})
	require.NoError(t, err)

	ab, ok := find(patterns, "A", "B")
	require.True(t, ok, "expected (A,B)")
	assert.Equal(t, 3, ab.Support)
	assert.InDelta(t, 1.0, ab.SupportRatio, 1e-12)

	bc, ok := find(patterns, "B", "C")
	require.True(t, ok, "expected (B,C)")
	assert.Equal(t, 2, bc.Support)
	assert.InDelta(t, 2.0/3.0, bc.SupportRatio, 1e-12)

	_, ok = find(patterns, "B", "D")
	assert.False(t, ok, "(B,D) is below threshold")
	_, ok = find(patterns, "D")
	assert.False(t, ok, "(D) is below threshold")

	for _, p := range patterns {
		assert.LessOrEqual(t, p.Len(), 2)
		assert.GreaterOrEqual(t, p.SupportRatio, 0.5)
	}
}

func TestMineBoundaryRatioPasses(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{{"A", "B"}, {"A", "C"}, {"B"}, {"C"}}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.5, MaxLen: 1, TopK: 10})
	require.NoError(t, err)

	// A, B and C each appear in exactly half of the sequences.
	assert.Len(t, patterns, 3)
	for _, p := range patterns {
		assert.Equal(t, 2, p.Support)
		assert.Equal(t, 0.5, p.SupportRatio)
	}
}

func TestMineCountsOncePerSequence(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{{"A", "B", "A", "B"}, {"C"}}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.5, MaxLen: 2, TopK: 10})
	require.NoError(t, err)

	ab, ok := find(patterns, "A", "B")
	require.True(t, ok)
	assert.Equal(t, 1, ab.Support)
	assert.InDelta(t, 0.5, ab.SupportRatio, 1e-12)
}

func TestMineOrdering(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{
		{"Python", "Django"},
		{"Python", "Django"},
		{"Python", "Flask"},
		{"Go"},
	}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.25, MaxLen: 2, TopK: 100})
	require.NoError(t, err)

	var got []string
	for _, p := range patterns {
		got = append(got, fmt.Sprintf("%v:%d", p.Sequence, p.Support))
	}
	want := []string{
		"[Python]:3",
		"[Django]:2",
		"[Python Django]:2",
		"[Flask]:1",
		"[Go]:1",
		"[Python Flask]:1",
	}
	assert.Equal(t, want, got)
}

func TestMineTopK(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{{"A", "B", "C"}, {"A", "B"}, {"A"}}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.1, MaxLen: 3, TopK: 2})
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, []string{"A"}, patterns[0].Sequence)
	assert.Equal(t, []string{"B"}, patterns[1].Sequence)
}

func TestMineNoPatternsIsNotError(t *testing.T) {
	t.Parallel()

	seqs := []Sequence{{"A"}, {"B"}, {"C"}}

	patterns, err := Mine(context.Background(), seqs, Params{MinSupport: 0.9, MaxLen: 2, TopK: 10})
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestMineErrors(t *testing.T) {
	t.Parallel()

	_, err := Mine(context.Background(), nil, Params{MinSupport: 0.5, MaxLen: 2, TopK: 10})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Mine(context.Background(), []Sequence{{"A"}}, Params{MinSupport: 0, MaxLen: 2, TopK: 10})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Mine(context.Background(), []Sequence{{"A"}}, Params{MinSupport: 0.5, MaxLen: 0, TopK: 10})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMineCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Mine(ctx, []Sequence{{"A", "B"}}, Params{MinSupport: 0.5, MaxLen: 2, TopK: 10})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMineDeterministic(t *testing.T) {
	t.Parallel()

	seqs := make([]Sequence, 0, 200)
	topics := []string{"SQL", "Python", "Pandas", "Statistics", "Machine Learning", "Deep Learning"}
	for i := 0; i < 200; i++ {
		seq := Sequence{}
		for j := 0; j < 4; j++ {
			seq = append(seq, topics[(i*7+j*(i%3+1))%len(topics)])
		}
		seqs = append(seqs, seq)
	}
	params := Params{MinSupport: 0.05, MaxLen: 3, TopK: 50}

	first, err := Mine(context.Background(), seqs, params)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Mine(context.Background(), seqs, params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
