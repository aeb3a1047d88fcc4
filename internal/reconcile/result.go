// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package reconcile

import "github.com/hulasync/hulasync/internal/models"

// Result is the outcome of one reconciliation.
type Result struct {
	Matches []models.ProjectMatch

	Inserted  int
	Updated   int
	Unchanged int
	Failed    int
	Orphaned  int // log rows whose Hula project no longer exists
	Stale     int // log rows whose remote entity vanished
}

// Pushed returns the number of successful pushes.
func (r Result) Pushed() int {
	return r.Inserted + r.Updated
}

// Counts returns the per-outcome counters keyed by metric label.
func (r Result) Counts() map[string]int {
	return map[string]int{
		"inserted":  r.Inserted,
		"updated":   r.Updated,
		"unchanged": r.Unchanged,
		"failed":    r.Failed,
		"orphaned":  r.Orphaned,
		"stale":     r.Stale,
	}
}
