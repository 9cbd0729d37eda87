// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package graph

import (
	"fmt"

	"github.com/goccy/go-json"
)

// document is the persisted form of a TopicGraph. Confidences are not
// stored; they are recomputed from counts on decode so a reloaded graph is
// identical to one built from the same patterns.
type document struct {
	Topics []string     `json:"topics"`
	Edges  []countEntry `json:"edges"`
}

type countEntry struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// MarshalJSON implements json.Marshaler.
func (g *TopicGraph) MarshalJSON() ([]byte, error) {
	doc := document{Topics: g.Topics(), Edges: make([]countEntry, 0, g.EdgeCount())}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, countEntry{From: e.From, To: e.To, Count: e.Count})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *TopicGraph) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode topic graph: %w", err)
	}

	topics := make(map[string]struct{}, len(doc.Topics))
	for _, t := range doc.Topics {
		topics[t] = struct{}{}
	}
	counts := make(map[string]map[string]int)
	for _, e := range doc.Edges {
		if _, ok := topics[e.From]; !ok {
			return fmt.Errorf("decode topic graph: edge source %q is not a topic", e.From)
		}
		if _, ok := topics[e.To]; !ok {
			return fmt.Errorf("decode topic graph: edge target %q is not a topic", e.To)
		}
		if counts[e.From] == nil {
			counts[e.From] = make(map[string]int)
		}
		counts[e.From][e.To] += e.Count
	}

	*g = *assemble(topics, counts)
	return nil
}
