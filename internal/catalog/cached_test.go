// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedLookupHitsBackendOnce(t *testing.T) {
	backend := &flakyCatalog{}
	c := NewCached(backend, 16, time.Minute)
	ctx := context.Background()

	first, err := c.Lookup(ctx, "Go", 3)
	require.NoError(t, err)
	second, err := c.Lookup(ctx, "Go", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls)

	// a different limit is a different key
	_, err = c.Lookup(ctx, "Go", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	backend := &flakyCatalog{failing: true}
	c := NewCached(backend, 16, time.Minute)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "Go", 3)
	require.Error(t, err)

	backend.setFailing(false)
	courses, err := c.Lookup(ctx, "Go", 3)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedReturnsCopies(t *testing.T) {
	c := NewCached(&flakyCatalog{}, 16, time.Minute)
	ctx := context.Background()

	courses, err := c.Lookup(ctx, "Go", 3)
	require.NoError(t, err)
	courses[0].Title = "mutated"

	again, err := c.Lookup(ctx, "Go", 3)
	require.NoError(t, err)
	assert.Empty(t, again[0].Title)
}

func TestCachedInvalidate(t *testing.T) {
	backend := &flakyCatalog{}
	c := NewCached(backend, 16, time.Minute)
	ctx := context.Background()

	_, _ = c.Lookup(ctx, "Go", 3)
	c.Invalidate()
	_, _ = c.Lookup(ctx, "Go", 3)
	assert.Equal(t, 2, backend.calls)

	_, _ = c.Search(ctx, "go", 3)
	_, _ = c.Search(ctx, "go", 3)
	assert.Equal(t, 4, backend.calls)
}
