// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
Package eventprocessor moves Coursepath domain events over Watermill.

Two event types flow through the bus:

  - graph.published: emitted after the mining coordinator publishes a new
    topic graph (see Publisher.PublishGraph, which satisfies
    coordinator.PublishHook).
  - sequence.recorded: learner topic sequences produced by other systems.
    RegisterSequenceConsumer appends them to the sequence store.

# Transports

The default transport is Watermill's in-process gochannel pub/sub
(NewMemoryBus). Binaries built with -tags nats can use NATS JetStream
through watermill-nats (NewNATSBus), optionally backed by an embedded
nats-server (NewEmbeddedServer). Without the tag those constructors return
ErrNATSNotAvailable.

# Resilience

Publishing goes through a gobreaker circuit breaker so a dead transport
fails fast instead of stalling the mining coordinator. Consumers run under
a Watermill router with Recoverer and Retry middleware; messages that fail
validation are acknowledged and dropped because redelivery cannot fix them.
*/
package eventprocessor
