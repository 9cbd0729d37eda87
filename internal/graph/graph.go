// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package graph builds the directed topic transition graph from mined
// patterns.
//
// Every consecutive pair (t[i], t[i+1]) of a pattern of length >= 2 adds the
// pattern's support to the transition count from t[i] to t[i+1]. Confidence
// is the first-order transition probability:
//
//	P(to | from) = count(from -> to) / count(from -> any)
//
// A TopicGraph is immutable once built. Callers that need a newer graph build
// a new one and swap the reference; in-flight readers keep a consistent view.
package graph

import (
	"errors"
	"sort"

	"github.com/tomtom215/coursepath/internal/mining"
)

// ErrEmptyInput is returned by Build when there are no patterns.
var ErrEmptyInput = errors.New("no patterns to build a topic graph from")

// Node is a topic plus its total outgoing observation count.
type Node struct {
	Topic    string `json:"topic"`
	OutCount int    `json:"out_count"`
}

// Edge is a weighted transition between two topics.
type Edge struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
}

// TopicGraph is an immutable directed graph of topic transitions.
// Cycles and self-loops are preserved.
type TopicGraph struct {
	topics []string
	nodes  map[string]Node
	out    map[string][]Edge
	edges  int
}

// Build accumulates transitions from patterns and returns the graph.
// Topics appearing only in length-1 patterns, or only as the last element
// of longer ones, are kept as nodes with no outgoing edges.
func Build(patterns []mining.Pattern) (*TopicGraph, error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyInput
	}

	topics := make(map[string]struct{})
	counts := make(map[string]map[string]int)

	for _, p := range patterns {
		seq := p.Sequence
		for i, topic := range seq {
			topics[topic] = struct{}{}
			if i == 0 {
				continue
			}
			from := seq[i-1]
			if counts[from] == nil {
				counts[from] = make(map[string]int)
			}
			counts[from][topic] += p.Support
		}
	}

	return assemble(topics, counts), nil
}

// assemble converts raw counts into a graph. Zero or negative counts are
// dropped so absent transitions never appear as zero-weight edges.
func assemble(topics map[string]struct{}, counts map[string]map[string]int) *TopicGraph {
	g := &TopicGraph{
		topics: make([]string, 0, len(topics)),
		nodes:  make(map[string]Node, len(topics)),
		out:    make(map[string][]Edge, len(counts)),
	}

	for topic := range topics {
		g.topics = append(g.topics, topic)
	}
	sort.Strings(g.topics)

	for _, from := range g.topics {
		total := 0
		for _, c := range counts[from] {
			if c > 0 {
				total += c
			}
		}
		g.nodes[from] = Node{Topic: from, OutCount: total}
		if total == 0 {
			continue
		}

		edges := make([]Edge, 0, len(counts[from]))
		for to, c := range counts[from] {
			if c <= 0 {
				continue
			}
			edges = append(edges, Edge{
				From:       from,
				To:         to,
				Count:      c,
				Confidence: float64(c) / float64(total),
			})
		}
		SortEdges(edges)
		g.out[from] = edges
		g.edges += len(edges)
	}

	return g
}

// SortEdges orders edges the way the planner walks them: confidence
// descending, then count descending, then destination topic ascending.
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.To < b.To
	})
}

// Has reports whether topic is a node.
func (g *TopicGraph) Has(topic string) bool {
	if g == nil {
		return false
	}
	_, ok := g.nodes[topic]
	return ok
}

// Node returns the node for topic.
func (g *TopicGraph) Node(topic string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	n, ok := g.nodes[topic]
	return n, ok
}

// Topics returns all node ids in ascending order.
func (g *TopicGraph) Topics() []string {
	if g == nil {
		return []string{}
	}
	topics := make([]string, len(g.topics))
	copy(topics, g.topics)
	return topics
}

// Outgoing returns a copy of topic's outgoing edges in walk order.
func (g *TopicGraph) Outgoing(topic string) []Edge {
	if g == nil {
		return nil
	}
	return append([]Edge(nil), g.out[topic]...)
}

// Edges returns every edge, grouped by source topic in ascending order.
func (g *TopicGraph) Edges() []Edge {
	if g == nil {
		return nil
	}
	all := make([]Edge, 0, g.edges)
	for _, from := range g.topics {
		all = append(all, g.out[from]...)
	}
	return all
}

// NodeCount returns the number of topics.
func (g *TopicGraph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.topics)
}

// EdgeCount returns the number of transitions.
func (g *TopicGraph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return g.edges
}
