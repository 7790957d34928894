// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package metrics provides Prometheus instrumentation for the sync engine.
// Metrics are exposed through the optional status server's /metrics endpoint
// during long-running batch syncs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UsersProcessed counts users by terminal outcome:
	// "created", "updated", "excluded", "error".
	UsersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulasync_users_processed_total",
			Help: "Total number of source users processed, by outcome",
		},
		[]string{"outcome"},
	)

	// FieldWrites counts individual profile field writes by field and result.
	// Fields: "name", "location", "bio_raw", "email". Results: "applied",
	// "skipped", "forbidden", "failed", "simulated".
	FieldWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulasync_field_writes_total",
			Help: "Total number of profile field writes, by field and result",
		},
		[]string{"field", "result"},
	)

	// APIRequestDuration tracks request latency against the two external
	// systems. System is "moodle" or "discourse".
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aulasync_api_request_duration_seconds",
			Help:    "Duration of external API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"system", "operation"},
	)

	// APIRequestErrors counts failed external API requests.
	APIRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulasync_api_request_errors_total",
			Help: "Total number of failed external API requests",
		},
		[]string{"system", "operation"},
	)

	// CircuitBreakerState tracks breaker state per breaker name
	// (0 = closed, 1 = half-open, 2 = open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aulasync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulasync_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// SyncRunning indicates whether a sync run is in progress.
	SyncRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aulasync_sync_running",
			Help: "Whether a sync run is currently in progress (0 or 1)",
		},
	)
)
