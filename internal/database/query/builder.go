// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package query builds parameterized WHERE clauses for the call log and
// sync log stores.
package query

import (
	"strings"
	"time"
)

// WhereBuilder accumulates AND-joined conditions and their arguments.
//
//	wb := query.NewWhereBuilder().
//	    AddEquals("script", "odoo_get.py").
//	    AddBool("ok", true).
//	    AddSince("updated_at", since)
//	where, args := wb.BuildWithPrefix()
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?" unless value is empty.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddBool adds "column = ?".
func (wb *WhereBuilder) AddBool(column string, value bool) *WhereBuilder {
	return wb.AddClause(column+" = ?", value)
}

// AddSince adds "column >= ?" unless since is zero.
func (wb *WhereBuilder) AddSince(column string, since time.Time) *WhereBuilder {
	if since.IsZero() {
		return wb
	}
	return wb.AddClause(column+" >= ?", since)
}

// AddBefore adds "column < ?" unless before is zero.
func (wb *WhereBuilder) AddBefore(column string, before time.Time) *WhereBuilder {
	if before.IsZero() {
		return wb
	}
	return wb.AddClause(column+" < ?", before)
}

// Build returns the conditions joined with AND, or "1=1" when empty.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the clause with a "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	where, args := wb.Build()
	return "WHERE " + where, args
}

