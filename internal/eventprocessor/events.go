// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package eventprocessor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/coursepath/internal/coordinator"
)

// Default topic names.
const (
	TopicGraphPublished   = "coursepath.graph.published"
	TopicSequenceRecorded = "coursepath.sequence.recorded"
)

// ErrInvalidEvent marks a payload that can never be processed.
var ErrInvalidEvent = errors.New("invalid event")

// GraphPublished announces a newly published topic graph.
type GraphPublished struct {
	EventID     string    `json:"event_id"`
	Version     uint64    `json:"version"`
	RunID       string    `json:"run_id"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	Patterns    int       `json:"patterns"`
	PublishedAt time.Time `json:"published_at"`
}

// NewGraphPublished builds the event for snap.
func NewGraphPublished(snap *coordinator.Snapshot) GraphPublished {
	ev := GraphPublished{
		EventID:     uuid.New().String(),
		Version:     snap.Version,
		RunID:       snap.RunID,
		Patterns:    len(snap.Patterns),
		PublishedAt: snap.PublishedAt,
	}
	if snap.Graph != nil {
		ev.Nodes = snap.Graph.NodeCount()
		ev.Edges = snap.Graph.EdgeCount()
	}
	return ev
}

// SequenceRecorded carries one learner's ordered topic sequence.
type SequenceRecorded struct {
	EventID   string   `json:"event_id"`
	LearnerID string   `json:"learner_id"`
	Source    string   `json:"source,omitempty"`
	Topics    []string `json:"topics"`
}

// Validate reports whether the event can be stored.
func (e *SequenceRecorded) Validate() error {
	if len(e.Topics) == 0 {
		return fmt.Errorf("%w: sequence has no topics", ErrInvalidEvent)
	}
	for i, t := range e.Topics {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: topic %d is blank", ErrInvalidEvent, i)
		}
	}
	return nil
}

// DecodeSequenceRecorded parses a sequence.recorded payload.
func DecodeSequenceRecorded(data []byte) (*SequenceRecorded, error) {
	var ev SequenceRecorded
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if ev.Source == "" {
		ev.Source = "event"
	}
	return &ev, nil
}
