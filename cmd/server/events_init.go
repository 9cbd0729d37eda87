// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"fmt"

	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/eventprocessor"
	"github.com/tomtom215/coursepath/internal/logging"
)

// eventComponents holds the event bus and everything built on it.
type eventComponents struct {
	bus       *eventprocessor.Bus
	publisher *eventprocessor.Publisher
	router    *eventprocessor.Router
}

// initEvents builds the bus selected by events.backend, a breaker-guarded
// publisher for graph.published events and a router consuming
// sequence.recorded events into store.
//
// Selecting the nats backend in a binary built without -tags nats is a
// startup error rather than a silent fallback.
func initEvents(cfg *config.Config, store eventprocessor.SequenceAppender) (*eventComponents, error) {
	logger := logging.WithComponent("events")
	adapter := eventprocessor.NewZerologAdapter(logger)

	evCfg := eventprocessor.Config{
		Backend:               cfg.Events.Backend,
		NATSURL:               cfg.Events.NATSURL,
		EmbeddedServer:        cfg.Events.EmbeddedServer,
		StoreDir:              cfg.Events.StoreDir,
		DurableName:           cfg.Events.DurableName,
		CloseTimeout:          cfg.Events.CloseTimeout,
		GraphPublishedTopic:   cfg.Events.GraphPublishedTopic,
		SequenceRecordedTopic: cfg.Events.SequenceRecordedTopic,
	}

	bus, err := eventprocessor.NewBus(evCfg, adapter)
	if err != nil {
		return nil, fmt.Errorf("initialize event bus: %w", err)
	}

	cb := eventprocessor.NewCircuitBreaker(eventprocessor.DefaultCircuitBreakerConfig(), logger)
	publisher := eventprocessor.NewPublisher(bus.Publisher, cb, evCfg, logger)

	routerCfg := eventprocessor.DefaultRouterConfig()
	routerCfg.CloseTimeout = cfg.Events.CloseTimeout
	router, err := eventprocessor.NewRouter(routerCfg, adapter)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("create event router: %w", err)
	}
	if err := eventprocessor.RegisterSequenceConsumer(router, bus.Subscriber, evCfg, store, logger); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("register sequence consumer: %w", err)
	}

	logging.Info().
		Str("backend", bus.Backend).
		Str("graph_topic", cfg.Events.GraphPublishedTopic).
		Str("sequence_topic", cfg.Events.SequenceRecordedTopic).
		Msg("Event bus initialized")

	return &eventComponents{bus: bus, publisher: publisher, router: router}, nil
}

// Close stops publishing, then closes the router and the transport.
func (e *eventComponents) Close() {
	if err := e.publisher.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event publisher")
	}
	if err := e.router.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event router")
	}
	if err := e.bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
	}
}
