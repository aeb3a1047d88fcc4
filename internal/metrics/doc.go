// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

/*
Package metrics provides Prometheus metrics for the sync service.

All collectors are registered on the default registry through promauto and
exposed by the metrics HTTP service at /metrics when METRICS_ADDR is set.

# Available Metrics

Pass Metrics:
  - hulasync_passes_total: Completed scheduler passes (counter)
    Labels: result (success, fatal)
  - hulasync_pass_duration_seconds: Pass latency (histogram)
  - hulasync_last_pass_timestamp_seconds: Unix time of the last pass (gauge)
  - hulasync_module_runs_total: Module runs (counter)
    Labels: module, result
  - hulasync_module_state: Current driver state index (gauge)
    Labels: module

Reconciliation Metrics:
  - hulasync_pushes_total: Pushes to Hula (counter)
    Labels: system, operation (insert, update), result
  - hulasync_reconcile_entities: Per-outcome entity counts of the last run (gauge)
    Labels: system, outcome
  - hulasync_sync_log_rows: Rows in the Sync Log (gauge)
    Labels: system

Call Log Metrics:
  - hulasync_call_log_writes_total: Call log writes (counter)
    Labels: kind, result
  - hulasync_call_log_pruned_total: Rows removed by retention (counter)
  - hulasync_fetch_lag_minutes: Last incremental fetch window (gauge)

Remote Metrics:
  - hulasync_remote_request_duration_seconds: Remote call latency (histogram)
    Labels: system, operation
  - hulasync_script_runs_total: Odoo script runs (counter)
    Labels: script, result
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures,
    circuit_breaker_state_transitions_total
*/
package metrics
