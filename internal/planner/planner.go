// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package planner walks a topic graph forward from a target topic to build
// a "what comes after this" learning path.
package planner

import (
	"github.com/tomtom215/coursepath/internal/graph"
)

// Hop is one topic on a path. Confidence and Count describe the edge that
// led to it; the starting topic has Confidence 1 and Count 0.
type Hop struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
	Count      int     `json:"count"`
}

// Result is the outcome of Plan. Found is false when the target topic is
// not a node of the graph; Path is then empty.
type Result struct {
	Target string `json:"target"`
	Path   []Hop  `json:"path"`
	Found  bool   `json:"found"`
}

// Topics returns the topic ids along the path.
func (r Result) Topics() []string {
	topics := make([]string, len(r.Path))
	for i, h := range r.Path {
		topics[i] = h.Topic
	}
	return topics
}

// Steps returns the number of transitions taken.
func (r Result) Steps() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// Plan starts at target and repeatedly follows the best outgoing edge
// (confidence desc, count desc, topic asc). The walk stops when the current
// topic has no outgoing edge, when maxSteps transitions have been taken, or
// when the best edge leads back to a topic already on the path.
//
// maxSteps <= 0 means unbounded; the cycle guard still guarantees
// termination since each topic appears at most once.
//
// A nil graph behaves like an empty one.
func Plan(g *graph.TopicGraph, target string, maxSteps int) Result {
	if !g.Has(target) {
		return Result{Target: target, Path: []Hop{}, Found: false}
	}

	path := []Hop{{Topic: target, Confidence: 1}}
	visited := map[string]struct{}{target: {}}
	current := target

	for maxSteps <= 0 || len(path)-1 < maxSteps {
		out := g.Outgoing(current)
		if len(out) == 0 {
			break
		}
		best := out[0]
		if _, seen := visited[best.To]; seen {
			break
		}
		path = append(path, Hop{Topic: best.To, Confidence: best.Confidence, Count: best.Count})
		visited[best.To] = struct{}{}
		current = best.To
	}

	return Result{Target: target, Path: path, Found: true}
}

// Next returns up to k outgoing edges of topic in walk order. k <= 0 returns
// all of them. Unknown topics yield an empty slice.
func Next(g *graph.TopicGraph, topic string, k int) []graph.Edge {
	out := g.Outgoing(topic)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	if out == nil {
		return []graph.Edge{}
	}
	return out
}
