// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package metrics provides Prometheus instrumentation for Harmonium:
// database query performance, API endpoint latency and throughput,
// recommendation engine operations, and the play-event pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Recommendation engine metrics
	EngineOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_operations_total",
			Help: "Total number of recommendation engine operations",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "fallback", "error"
	)

	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_operation_duration_seconds",
			Help:    "Duration of recommendation engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Play-event pipeline metrics
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_published_total",
			Help: "Total number of play events published to the pipeline",
		},
	)

	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_consumed_total",
			Help: "Total number of play events consumed from the pipeline",
		},
	)

	EventsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_persisted_total",
			Help: "Total number of play events written to the store",
		},
	)

	EventParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_parse_failures_total",
			Help: "Total number of play-event payloads that failed to parse",
		},
	)

	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_deduplicated_total",
			Help: "Total number of duplicate play events skipped",
		},
	)

	EventPublishRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_publish_rejected_total",
			Help: "Total number of publishes rejected by the circuit breaker",
		},
	)
)

// TimeDBQuery returns a function that records the query duration when
// called. Intended for deferred use:
//
//	defer metrics.TimeDBQuery("recent_history")()
func TimeDBQuery(operation string) func() {
	start := time.Now()
	return func() {
		DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEngineFallback counts a recommendation operation that resolved
// through the popularity fallback.
func RecordEngineFallback(operation string) {
	EngineOperationsTotal.WithLabelValues(operation, "fallback").Inc()
}

// RecordEngineOperation records a recommendation engine operation.
func RecordEngineOperation(operation, outcome string, duration time.Duration) {
	EngineOperationsTotal.WithLabelValues(operation, outcome).Inc()
	EngineOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
