// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package mining extracts frequent contiguous topic sub-sequences from
// recorded learning sequences.
//
// Candidates are sliding windows of length 1..MaxLen taken from every
// sequence. A window counts once per sequence that contains it, so
// SupportRatio = Support / len(sequences) always lies in [0, 1]:
//
//	P(pattern) = |{s in S : pattern is a window of s}| / |S|
//
// Mine is a pure function: identical input and parameters yield an
// identical ordered result.
package mining

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidParameter is returned when mining thresholds are out of range.
	ErrInvalidParameter = errors.New("invalid mining parameter")

	// ErrEmptyInput is returned when there are no sequences to mine.
	ErrEmptyInput = errors.New("no sequences to mine")
)

// Sequence is one learner's ordered topic progression.
type Sequence []string

// Pattern is a frequent contiguous sub-sequence.
type Pattern struct {
	Sequence     []string `json:"sequence"`
	Support      int      `json:"support"`
	SupportRatio float64  `json:"support_ratio"`
}

// Len returns the number of topics in the pattern.
func (p Pattern) Len() int {
	return len(p.Sequence)
}

// Params controls a mining run.
type Params struct {
	MinSupport float64 `json:"min_support"` // in (0, 1]
	MaxLen     int     `json:"max_len"`     // >= 1
	TopK       int     `json:"top_k"`       // >= 1
}

// Validate rejects out-of-range parameters. Values are never clamped.
func (p Params) Validate() error {
	if !(p.MinSupport > 0 && p.MinSupport <= 1) {
		return fmt.Errorf("%w: min_support must be in (0, 1], got %v", ErrInvalidParameter, p.MinSupport)
	}
	if p.MaxLen < 1 {
		return fmt.Errorf("%w: max_len must be >= 1, got %d", ErrInvalidParameter, p.MaxLen)
	}
	if p.TopK < 1 {
		return fmt.Errorf("%w: top_k must be >= 1, got %d", ErrInvalidParameter, p.TopK)
	}
	return nil
}

// keySep joins topics into map keys. Topic labels are display strings and
// never contain control characters.
const keySep = "\x1f"

// cancelCheckEvery is how many sequences are processed between context checks.
const cancelCheckEvery = 256

type candidate struct {
	topics  []string
	support int
}

// Mine returns the patterns whose support ratio is at least p.MinSupport,
// sorted by support descending, then shorter first, then lexicographically
// by topic, truncated to p.TopK.
//
// An empty result is not an error. ErrEmptyInput is returned only when
// seqs itself is empty. Mining stops early with ctx.Err() when ctx is done.
func Mine(ctx context.Context, seqs []Sequence, p Params) ([]Pattern, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, ErrEmptyInput
	}

	counts := make(map[string]*candidate)
	seen := make(map[string]struct{})

	for i, seq := range seqs {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		clear(seen)
		for start := range seq {
			for length := 1; length <= p.MaxLen && start+length <= len(seq); length++ {
				window := seq[start : start+length]
				key := strings.Join(window, keySep)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				c, ok := counts[key]
				if !ok {
					c = &candidate{topics: append([]string(nil), window...)}
					counts[key] = c
				}
				c.support++
			}
		}
	}

	total := float64(len(seqs))
	patterns := make([]Pattern, 0, len(counts))
	for _, c := range counts {
		ratio := float64(c.support) / total
		if ratio < p.MinSupport {
			continue
		}
		patterns = append(patterns, Pattern{
			Sequence:     c.topics,
			Support:      c.support,
			SupportRatio: ratio,
		})
	}

	SortPatterns(patterns)

	if len(patterns) > p.TopK {
		patterns = patterns[:p.TopK]
	}
	return patterns, nil
}

// SortPatterns orders patterns by support descending, then shorter first,
// then lexicographically by topic ids.
func SortPatterns(patterns []Pattern) {
	sort.Slice(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if len(a.Sequence) != len(b.Sequence) {
			return len(a.Sequence) < len(b.Sequence)
		}
		return compareTopics(a.Sequence, b.Sequence) < 0
	})
}

func compareTopics(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
