// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncLogRow binds a remote entity to the Hula project created for it.
// There is at most one row per (system, remote id).
type SyncLogRow struct {
	ID        uuid.UUID
	System    System
	LocalID   string
	RemoteID  string
	Name      string
	UpdatedBy string
	UpdatedAt time.Time
}

// CallKind distinguishes the two call log tables.
type CallKind string

const (
	// CallScript is an Odoo side-process invocation (odoo_call_log).
	CallScript CallKind = "script"
	// CallHTTP is a Hula or Hubspot HTTP request (hula_call_log).
	CallHTTP CallKind = "http"
)

// MaxCallParams is the number of positional script parameters persisted.
const MaxCallParams = 6

// CallLogRow is an audit record of one outbound call.
type CallLogRow struct {
	ID        uuid.UUID
	Kind      CallKind
	Target    string   // script name or URL
	Verb      string   // HTTP method, empty for scripts
	Params    []string // script arguments or the HTTP payload as single element
	LocalID   string   // Hula project id when the call concerns one
	RemoteID  string
	Status    int // HTTP status or process exit code
	Success   bool
	Response  string
	UpdatedBy string
	Timestamp time.Time
}

// Param returns the i-th parameter (0-based), or "" when absent.
func (r CallLogRow) Param(i int) string {
	if i < 0 || i >= len(r.Params) {
		return ""
	}
	return r.Params[i]
}
