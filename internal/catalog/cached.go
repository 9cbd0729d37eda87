// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/coursepath/internal/cache"
	"github.com/tomtom215/coursepath/internal/metrics"
)

// Cached memoizes successful Lookup results per (topic, limit). Search and
// Get pass straight through. Errors are never cached, so a catalog outage
// is retried on the next request.
type Cached struct {
	next    Catalog
	lookups *cache.LRU[string, []Course]
}

// NewCached wraps next with an LRU of size entries that expire after ttl.
func NewCached(next Catalog, size int, ttl time.Duration) *Cached {
	return &Cached{
		next:    next,
		lookups: cache.NewLRU[string, []Course](size, ttl),
	}
}

// Lookup implements Catalog. Callers receive their own copy of the slice.
func (c *Cached) Lookup(ctx context.Context, topic string, limit int) ([]Course, error) {
	key := strconv.Itoa(limit) + "\x00" + topic
	if courses, ok := c.lookups.Get(key); ok {
		metrics.RecordCatalogCache(true)
		return clone(courses), nil
	}
	metrics.RecordCatalogCache(false)

	courses, err := c.next.Lookup(ctx, topic, limit)
	if err != nil {
		return nil, err
	}
	c.lookups.Add(key, clone(courses))
	return courses, nil
}

// Search implements Catalog.
func (c *Cached) Search(ctx context.Context, keyword string, limit int) ([]Course, error) {
	return c.next.Search(ctx, keyword, limit)
}

// Get implements Catalog.
func (c *Cached) Get(ctx context.Context, id string) (Course, error) {
	return c.next.Get(ctx, id)
}

// Invalidate drops every cached lookup.
func (c *Cached) Invalidate() {
	c.lookups.Clear()
}

func clone(courses []Course) []Course {
	out := make([]Course, len(courses))
	copy(out, courses)
	return out
}
