// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

/*
Command server runs the Coursepath API.

Coursepath mines frequent topic transitions from learner sequences, builds a
weighted topic graph from them and answers learning path recommendations
against the graph, attaching ranked catalog courses to every step.

# Startup

Components are initialized in order:

 1. Configuration (Koanf: defaults, then config.yaml, then environment)
 2. Logging (zerolog)
 3. DuckDB store, plus the optional seed file
 4. Catalog circuit breaker over the DuckDB course tables
 5. Snapshot store (BadgerDB); the latest graph is restored for a warm start
 6. Event bus (Watermill over Go channels, or NATS JetStream with -tags nats)
 7. Mining coordinator with publish hooks (snapshot save, graph.published event)
 8. Classifier client, or the fallback verdict when none is configured
 9. Supervisor tree: remine scheduler, event router, HTTP server

# Build Tags

	go build ./cmd/server              # in-memory event bus only
	go build -tags nats ./cmd/server   # adds NATS JetStream and the embedded server

# Signals

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining in-flight requests for server.shutdown_timeout), the event
router and the scheduler, after which the stores are closed.

# Example

	export DUCKDB_PATH=./coursepath.duckdb
	export SEED_FILE=./examples/seed.json
	export SNAPSHOT_PATH=./snapshots
	export JWT_SECRET=$(openssl rand -base64 32)
	./server
*/
package main
