// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 60*time.Second)
}

// Table names.
const (
	TableOdooProjects    = "odoo_projects"
	TableHubspotProjects = "hubspot_projects"
	TableOdooCallLog     = "odoo_call_log"
	TableHulaCallLog     = "hula_call_log"
)

// schemaQueries creates the four tables. Every table has a UUID surrogate
// key; the project tables enforce one row per remote id.
var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS odoo_projects (
		id UUID PRIMARY KEY,
		hula_id UUID NOT NULL,
		odoo_id INTEGER NOT NULL UNIQUE,
		name VARCHAR NOT NULL,
		updated_by VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS hubspot_projects (
		id UUID PRIMARY KEY,
		hula_id UUID NOT NULL,
		hubspot_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR NOT NULL,
		updated_by VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS odoo_call_log (
		id UUID PRIMARY KEY,
		script VARCHAR NOT NULL,
		param1 VARCHAR,
		param2 VARCHAR,
		param3 VARCHAR,
		param4 VARCHAR,
		param5 VARCHAR,
		param6 VARCHAR,
		ok BOOLEAN NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		response VARCHAR,
		updated_by VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hula_call_log (
		id UUID PRIMARY KEY,
		hula_id VARCHAR,
		remote_id VARCHAR,
		url VARCHAR NOT NULL,
		verb VARCHAR NOT NULL,
		payload VARCHAR,
		status INTEGER NOT NULL,
		ok BOOLEAN NOT NULL,
		response VARCHAR,
		updated_by VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_odoo_call_log_script_time ON odoo_call_log(script, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_hula_call_log_time ON hula_call_log(updated_at)`,
}

// migrate creates missing tables and indexes. It is idempotent.
func (db *DB) migrate(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	for _, q := range append(append([]string{}, schemaQueries...), indexQueries...) {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute schema query: %s: %w", q, err)
		}
	}
	return nil
}
