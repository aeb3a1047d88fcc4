// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hulasync"

var (
	// Pass Metrics
	PassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Total number of scheduler passes",
		},
		[]string{"result"}, // "success", "fatal"
	)

	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of scheduler passes in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	LastPassTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix timestamp of the last finished pass",
		},
	)

	ModuleRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_runs_total",
			Help:      "Total number of module runs",
		},
		[]string{"module", "result"}, // result: "success", "error", "unknown"
	)

	ModuleState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "module_state",
			Help:      "Current driver state (0=idle, 1=authenticated, 2=skills_synced, 3=fetched, 4=reconciled, 5=pushed, 6=logged_results)",
		},
		[]string{"module"},
	)

	// Reconciliation Metrics
	PushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pushes_total",
			Help:      "Total number of pushes to Hula",
		},
		[]string{"system", "operation", "result"},
	)

	ReconcileEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_entities",
			Help:      "Entity counts by outcome for the last reconciliation",
		},
		[]string{"system", "outcome"}, // inserted, updated, unchanged, failed, orphaned, stale
	)

	SyncLogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_log_rows",
			Help:      "Number of rows in the Sync Log",
		},
		[]string{"system"},
	)

	// Call Log Metrics
	CallLogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_log_writes_total",
			Help:      "Total number of call log writes",
		},
		[]string{"kind", "result"},
	)

	CallLogPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_log_pruned_total",
			Help:      "Total number of call log rows removed by retention",
		},
	)

	FetchLagMinutes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_lag_minutes",
			Help:      "Incremental fetch window requested from Odoo",
		},
	)

	// Remote Metrics
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Duration of remote calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"system", "operation"},
	)

	ScriptRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "script_runs_total",
			Help:      "Total number of Odoo script runs",
		},
		[]string{"script", "result"}, // "success", "exit_error", "error"
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

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordPass records a finished scheduler pass.
func RecordPass(duration time.Duration, fatal bool) {
	result := "success"
	if fatal {
		result = "fatal"
	}
	PassesTotal.WithLabelValues(result).Inc()
	PassDuration.Observe(duration.Seconds())
	LastPassTimestamp.Set(float64(time.Now().Unix()))
}

// RecordModuleRun records one module run within a pass.
func RecordModuleRun(module string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ModuleRuns.WithLabelValues(module, result).Inc()
}

// RecordPush records a push to Hula
func RecordPush(system, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	PushesTotal.WithLabelValues(system, operation, result).Inc()
}

// RecordReconcile publishes the outcome counts of one reconciliation.
func RecordReconcile(system string, counts map[string]int) {
	for outcome, n := range counts {
		ReconcileEntities.WithLabelValues(system, outcome).Set(float64(n))
	}
}

// RecordCallLogWrite records a call log write
func RecordCallLogWrite(kind string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	CallLogWrites.WithLabelValues(kind, result).Inc()
}

// RecordRemoteRequest records the latency of one remote call.
func RecordRemoteRequest(system, operation string, duration time.Duration) {
	RemoteRequestDuration.WithLabelValues(system, operation).Observe(duration.Seconds())
}

// RecordScriptRun records an Odoo script run.
func RecordScriptRun(script, result string) {
	ScriptRuns.WithLabelValues(script, result).Inc()
}
