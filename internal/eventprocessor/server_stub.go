// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

//go:build !nats

package eventprocessor

import (
	"context"
)

// EmbeddedServer stands in for the in-process JetStream broker that
// carries TopicSequenceRecorded and TopicGraphPublished in nats builds.
// Without the tag only the memory backend is usable.
type EmbeddedServer struct {
	clientURL string
}

// NewEmbeddedServer always fails with ErrNATSNotAvailable.
func NewEmbeddedServer(cfg *ServerConfig) (*EmbeddedServer, error) {
	return nil, ErrNATSNotAvailable
}

// ClientURL is empty: there is no broker to dial.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	return nil
}

func (s *EmbeddedServer) IsRunning() bool {
	return false
}

func (s *EmbeddedServer) JetStreamEnabled() bool {
	return false
}
