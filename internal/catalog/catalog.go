// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package catalog defines the course catalog contract consumed by the
// recommendation assembler, plus ranking and a circuit breaker wrapper.
package catalog

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrUnavailable is returned when the catalog backend cannot answer,
	// including when the circuit breaker rejects the call.
	ErrUnavailable = errors.New("course catalog unavailable")

	// ErrCourseNotFound is returned by Get for an unknown course id.
	ErrCourseNotFound = errors.New("course not found")
)

// Course is a catalog entry.
type Course struct {
	ID           string   `json:"course_id"`
	Title        string   `json:"title"`
	Topics       []string `json:"topics"`
	Instructor   string   `json:"instructor"`
	Rating       float64  `json:"rating"`
	NumReviews   int      `json:"num_reviews"`
	Students     int      `json:"students"`
	IsBestseller bool     `json:"is_bestseller"`
	Price        float64  `json:"price"`
	Lectures     int      `json:"lectures"`
	Sections     int      `json:"sections"`
	Duration     string   `json:"duration"`
	URL          string   `json:"url"`
}

// Catalog looks up courses.
//
// Lookup returns courses tagged with topic and Search returns courses whose
// title contains keyword (case-insensitive). Both return at most limit
// courses, best first.
type Catalog interface {
	Lookup(ctx context.Context, topic string, limit int) ([]Course, error)
	Search(ctx context.Context, keyword string, limit int) ([]Course, error)
	Get(ctx context.Context, id string) (Course, error)
}

// Rank sorts courses in place: bestsellers first, then rating descending,
// then student count descending. The sort is stable so ties keep catalog
// order.
func Rank(courses []Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		return Less(courses[i], courses[j])
	})
}

// Less reports whether a ranks strictly ahead of b.
func Less(a, b Course) bool {
	if a.IsBestseller != b.IsBestseller {
		return a.IsBestseller
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.Students > b.Students
}

// HasTopic reports whether c is tagged with topic.
func (c Course) HasTopic(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
