// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package metrics declares the Prometheus instrumentation for Coursepath.
//
// All collectors are registered on the default registry through promauto and
// exported by the /metrics endpoint. Callers use the Record* helpers rather
// than touching the vectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Mining Metrics
	MiningRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mining_runs_total",
			Help: "Total number of mining runs by outcome",
		},
		[]string{"outcome"}, // published, no_patterns, failed, rejected
	)

	MiningRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mining_run_duration_seconds",
			Help:    "Duration of mining runs including graph build",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	MiningPatterns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mining_last_pattern_count",
			Help: "Number of patterns produced by the last completed run",
		},
	)

	MiningSequences = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mining_last_sequence_count",
			Help: "Number of sequences read by the last completed run",
		},
	)

	CoordinatorState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mining_coordinator_state",
			Help: "Coordinator state (0=idle, 1=mining, 2=failed)",
		},
	)

	// Topic Graph Metrics
	GraphNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topic_graph_nodes",
			Help: "Number of topics in the published graph",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topic_graph_edges",
			Help: "Number of transitions in the published graph",
		},
	)

	GraphVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topic_graph_version",
			Help: "Version of the published graph",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of learning path recommendations",
		},
		[]string{"result"}, // found, not_found
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Total number of catalog lookups",
		},
		[]string{"operation", "result"}, // result: hit, empty, error
	)

	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_calls_total",
			Help: "Total number of bestseller classifier calls",
		},
		[]string{"result"}, // success, error, fallback
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed",
		},
		[]string{"topic", "result"}, // result: stored, invalid, duplicate, error
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMiningRun records the outcome of a mining run.
func RecordMiningRun(outcome string, duration time.Duration, sequences, patterns int) {
	MiningRunsTotal.WithLabelValues(outcome).Inc()
	if outcome == "rejected" {
		return
	}
	MiningRunDuration.Observe(duration.Seconds())
	MiningSequences.Set(float64(sequences))
	MiningPatterns.Set(float64(patterns))
}

// RecordGraphPublished updates the published graph gauges.
func RecordGraphPublished(version uint64, nodes, edges int) {
	GraphVersion.Set(float64(version))
	GraphNodes.Set(float64(nodes))
	GraphEdges.Set(float64(edges))
}

// SetCoordinatorState sets the coordinator state gauge.
func SetCoordinatorState(state float64) {
	CoordinatorState.Set(state)
}

// RecordRecommendation counts a recommendation by whether the topic was found.
func RecordRecommendation(found bool) {
	if found {
		RecommendationsTotal.WithLabelValues("found").Inc()
		return
	}
	RecommendationsTotal.WithLabelValues("not_found").Inc()
}

// RecordCatalogLookup counts a catalog call.
func RecordCatalogLookup(operation string, results int, err error) {
	switch {
	case err != nil:
		CatalogLookups.WithLabelValues(operation, "error").Inc()
	case results == 0:
		CatalogLookups.WithLabelValues(operation, "empty").Inc()
	default:
		CatalogLookups.WithLabelValues(operation, "hit").Inc()
	}
}

// RecordCatalogCache counts a catalog cache hit or miss.
func RecordCatalogCache(hit bool) {
	if hit {
		CatalogCache.WithLabelValues("hit").Inc()
		return
	}
	CatalogCache.WithLabelValues("miss").Inc()
}

// RecordClassifierCall counts a classifier call.
func RecordClassifierCall(result string) {
	ClassifierCalls.WithLabelValues(result).Inc()
}

// RecordEventPublished counts a publish attempt.
func RecordEventPublished(topic string, err error) {
	if err != nil {
		EventsPublished.WithLabelValues(topic, "error").Inc()
		return
	}
	EventsPublished.WithLabelValues(topic, "success").Inc()
}

// RecordEventConsumed counts a consumed message.
func RecordEventConsumed(topic, result string) {
	EventsConsumed.WithLabelValues(topic, result).Inc()
}
