// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(courses []Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestRank(t *testing.T) {
	t.Parallel()

	courses := []Course{
		{ID: "low", Rating: 3.9, Students: 100},
		{ID: "tie-a", Rating: 4.5, Students: 500},
		{ID: "best", Rating: 4.1, Students: 10, IsBestseller: true},
		{ID: "tie-b", Rating: 4.5, Students: 500},
		{ID: "popular", Rating: 4.5, Students: 9000},
	}

	Rank(courses)

	assert.Equal(t, []string{"best", "popular", "tie-a", "tie-b", "low"}, ids(courses))
}

func TestMemoryLookupAndSearch(t *testing.T) {
	t.Parallel()

	m := NewMemory([]Course{
		{ID: "1", Title: "Python for Everybody", Topics: []string{"Python"}, Rating: 4.6},
		{ID: "2", Title: "Advanced Python", Topics: []string{"Python", "Django"}, Rating: 4.8},
		{ID: "3", Title: "Django REST", Topics: []string{"Django"}, Rating: 4.2, IsBestseller: true},
	})
	ctx := context.Background()

	got, err := m.Lookup(ctx, "Python", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(got))

	got, err = m.Lookup(ctx, "Django", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(got))

	got, err = m.Lookup(ctx, "Rust", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.Search(ctx, "PYTHON", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(got))

	c, err := m.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Django REST", c.Title)

	_, err = m.Get(ctx, "404")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestHasTopic(t *testing.T) {
	t.Parallel()

	c := Course{Topics: []string{"Data Science", "Python"}}
	assert.True(t, c.HasTopic("Python"))
	assert.False(t, c.HasTopic("python"))
}
