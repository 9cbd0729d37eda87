// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package catalog

import (
	"context"
	"strings"
	"sync"
)

// Memory is a Catalog over an in-process slice of courses. Ties in ranking
// keep insertion order.
type Memory struct {
	mu      sync.RWMutex
	courses []Course
}

// NewMemory returns a catalog holding a copy of courses.
func NewMemory(courses []Course) *Memory {
	return &Memory{courses: append([]Course(nil), courses...)}
}

// Add appends a course.
func (m *Memory) Add(c Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses = append(m.courses, c)
}

// Lookup implements Catalog.
func (m *Memory) Lookup(ctx context.Context, topic string, limit int) ([]Course, error) {
	return m.filter(ctx, limit, func(c Course) bool { return c.HasTopic(topic) })
}

// Search implements Catalog.
func (m *Memory) Search(ctx context.Context, keyword string, limit int) ([]Course, error) {
	kw := strings.ToLower(keyword)
	return m.filter(ctx, limit, func(c Course) bool {
		return strings.Contains(strings.ToLower(c.Title), kw)
	})
}

// Get implements Catalog.
func (m *Memory) Get(ctx context.Context, id string) (Course, error) {
	if err := ctx.Err(); err != nil {
		return Course{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (m *Memory) filter(ctx context.Context, limit int, keep func(Course) bool) ([]Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matches := make([]Course, 0)
	for _, c := range m.courses {
		if keep(c) {
			matches = append(matches, c)
		}
	}
	m.mu.RUnlock()

	Rank(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
