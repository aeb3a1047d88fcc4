// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package audit records every outbound call made during a sync pass: Odoo
// script runs go to odoo_call_log and Hula/Hubspot HTTP requests go to
// hula_call_log. The log is append-only and pruned by age.
//
// The call log also drives incremental fetching: Startup derives from the
// last successful Odoo fetch how many minutes of changes to request.
package audit

import (
	"context"
	"time"

	"github.com/hulasync/hulasync/internal/models"
)

// Store persists call log rows.
type Store interface {
	// Save appends a row. ID is assigned when nil.
	Save(ctx context.Context, row *models.CallLogRow) error

	// Query returns matching rows, most recent first.
	Query(ctx context.Context, filter Filter) ([]models.CallLogRow, error)

	// Prune deletes rows of both kinds older than olderThan and returns the
	// number removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Filter selects call log rows. Kind is required.
type Filter struct {
	Kind        models.CallKind
	Target      string
	SuccessOnly bool
	Since       time.Time
	Limit       int
}

// matches reports whether row satisfies the filter.
func (f *Filter) matches(row *models.CallLogRow) bool {
	if row.Kind != f.Kind {
		return false
	}
	if f.Target != "" && row.Target != f.Target {
		return false
	}
	if f.SuccessOnly && !row.Success {
		return false
	}
	if !f.Since.IsZero() && row.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
