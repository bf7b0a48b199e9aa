// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package metrics registers the Prometheus instrumentation for
// RosterHub: upstream workforce API calls, token lifecycle, circuit
// breaker state, response caching, and inbound HTTP latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream workforce API metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_upstream_requests_total",
			Help: "Total upstream workforce API requests by resource and outcome",
		},
		[]string{"resource", "outcome"}, // outcome: "success", "error"
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_upstream_retries_total",
			Help: "Total upstream retries by reason",
		},
		[]string{"reason"}, // "unauthorized", "throttled", "upstream_5xx", "network"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workforce_upstream_request_duration_seconds",
			Help:    "Duration of upstream workforce API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// Token lifecycle metrics
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_token_refreshes_total",
			Help: "Total token refresh attempts by outcome",
		},
		[]string{"outcome"}, // "success", "error"
	)

	TokenInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workforce_token_invalidations_total",
			Help: "Total eager token invalidations triggered by HTTP 401",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workforce_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// Response cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterhub_cache_hits_total",
			Help: "Response cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterhub_cache_misses_total",
			Help: "Response cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Inbound HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosterhub_http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rosterhub_http_active_requests",
			Help: "Inbound HTTP requests currently being served",
		},
	)
)

// RecordAPIRequest records one completed inbound HTTP request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records one upstream call with its duration.
func RecordUpstreamRequest(resource string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(resource, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}
