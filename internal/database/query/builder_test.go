// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	where, args := NewWhereBuilder().Build()
	if where != "1=1" || len(args) != 0 {
		t.Errorf("Build() = %q, %v", where, args)
	}
}

func TestWhereBuilder_SkipsEmptyValues(t *testing.T) {
	where, args := NewWhereBuilder().
		AddEquals("script", "").
		AddSince("updated_at", time.Time{}).
		AddBefore("updated_at", time.Time{}).
		Build()

	if where != "1=1" || len(args) != 0 {
		t.Errorf("empty values should not add clauses, got %q %v", where, args)
	}
}

func TestWhereBuilder_Combined(t *testing.T) {
	since := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	wb := NewWhereBuilder().
		AddEquals("script", "odoo_get.py").
		AddBool("ok", true).
		AddSince("updated_at", since).
		AddBefore("updated_at", since.AddDate(0, 0, 1))

	where, args := wb.BuildWithPrefix()
	want := "WHERE script = ? AND ok = ? AND updated_at >= ? AND updated_at < ?"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("len(args) = %d, want 4", len(args))
	}
	if args[0] != "odoo_get.py" || args[1] != true || args[2] != since || args[3] != since.AddDate(0, 0, 1) {
		t.Errorf("unexpected args: %v", args)
	}
}
