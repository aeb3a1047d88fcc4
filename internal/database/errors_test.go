// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package database

import (
	"errors"
	"testing"
)

func TestIsConnectionError(t *testing.T) {
	if IsConnectionError(nil) {
		t.Error("nil is not a connection error")
	}
	if !IsConnectionError(errors.New("sql: database is closed")) {
		t.Error("expected closed database to be a connection error")
	}
	if IsConnectionError(errors.New("syntax error")) {
		t.Error("syntax error is not a connection error")
	}
}

func TestIsUniqueViolation_Messages(t *testing.T) {
	if !IsUniqueViolation(errors.New("Constraint Error: Duplicate key \"odoo_id: 7\"")) {
		t.Error("expected duplicate key to match")
	}
	if IsUniqueViolation(errors.New("Conversion Error")) {
		t.Error("unexpected match")
	}
}
