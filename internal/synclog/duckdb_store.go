// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package synclog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/database"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// table describes where a system's rows live.
type table struct {
	name      string
	remoteCol string
	intRemote bool
}

var tables = map[models.System]table{
	models.SystemHubspot: {name: database.TableHubspotProjects, remoteCol: "hubspot_id"},
	models.SystemOdoo:    {name: database.TableOdooProjects, remoteCol: "odoo_id", intRemote: true},
}

func tableFor(system models.System) (table, error) {
	t, ok := tables[system]
	if !ok {
		return table{}, syncerr.Storage("synclog", fmt.Errorf("unknown system %q", system))
	}
	return t, nil
}

// DuckDBStore implements Store on the odoo_projects and hubspot_projects
// tables created by the database package.
type DuckDBStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewDuckDBStore creates a store on an open, migrated database.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db, now: time.Now}
}

// LoadAll implements Store.
func (s *DuckDBStore) LoadAll(ctx context.Context, system models.System) ([]models.SyncLogRow, error) {
	t, err := tableFor(system)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // table and column names come from the fixed tables map
	query := fmt.Sprintf(`SELECT CAST(id AS VARCHAR), CAST(hula_id AS VARCHAR), CAST(%s AS VARCHAR),
		name, updated_by, updated_at FROM %s ORDER BY updated_at, id`, t.remoteCol, t.name)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, syncerr.Storage("synclog.load", fmt.Errorf("failed to query %s: %w", t.name, err))
	}
	defer rows.Close()

	var out []models.SyncLogRow
	for rows.Next() {
		var (
			id  string
			row = models.SyncLogRow{System: system}
		)
		if err := rows.Scan(&id, &row.LocalID, &row.RemoteID, &row.Name, &row.UpdatedBy, &row.UpdatedAt); err != nil {
			return nil, syncerr.Storage("synclog.load", fmt.Errorf("failed to scan %s row: %w", t.name, err))
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			logging.Warn().Str("table", t.name).Str("id", id).Err(err).Msg("Skipping sync log row with malformed id")
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, syncerr.Storage("synclog.load", fmt.Errorf("error iterating %s: %w", t.name, err))
	}
	return out, nil
}

// Insert implements Store.
func (s *DuckDBStore) Insert(ctx context.Context, row *models.SyncLogRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := prepareRow(row, s.now()); err != nil {
		return err
	}
	t, err := tableFor(row.System)
	if err != nil {
		return err
	}

	var remote interface{} = row.RemoteID
	if t.intRemote {
		n, _ := strconv.ParseInt(row.RemoteID, 10, 32) //nolint:errcheck // checked in prepareRow
		remote = int32(n)
	}

	//nolint:gosec // table and column names come from the fixed tables map
	query := fmt.Sprintf(`INSERT INTO %s (id, hula_id, %s, name, updated_by, updated_at)
		VALUES (CAST(? AS UUID), CAST(? AS UUID), ?, ?, ?, ?)`, t.name, t.remoteCol)

	_, err = s.db.ExecContext(ctx, query, row.ID.String(), row.LocalID, remote, row.Name, row.UpdatedBy, row.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return syncerr.Duplicate("synclog.insert", fmt.Sprintf("%s remote id %s", row.System, row.RemoteID))
		}
		return syncerr.Storage("synclog.insert", fmt.Errorf("failed to insert into %s: %w", t.name, err))
	}
	return nil
}

// Count implements Store.
func (s *DuckDBStore) Count(ctx context.Context, system models.System) (int64, error) {
	t, err := tableFor(system)
	if err != nil {
		return 0, err
	}
	var n int64
	//nolint:gosec // table name comes from the fixed tables map
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, syncerr.Storage("synclog.count", fmt.Errorf("failed to count %s: %w", t.name, err))
	}
	return n, nil
}
