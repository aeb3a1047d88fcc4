// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/database"
	"github.com/hulasync/hulasync/internal/database/query"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// DuckDBStore implements Store on the odoo_call_log and hula_call_log
// tables created by the database package.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore creates a store on an open, migrated database.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// Save implements Store.
func (s *DuckDBStore) Save(ctx context.Context, row *models.CallLogRow) error {
	if row == nil {
		return fmt.Errorf("row cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	var err error
	switch row.Kind {
	case models.CallScript:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO odoo_call_log (
				id, script, param1, param2, param3, param4, param5, param6,
				ok, status, response, updated_by, updated_at
			) VALUES (CAST(? AS UUID), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID.String(), row.Target,
			param(row, 0), param(row, 1), param(row, 2), param(row, 3), param(row, 4), param(row, 5),
			row.Success, row.Status, nullString(row.Response), row.UpdatedBy, row.Timestamp.UTC())
	case models.CallHTTP:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO hula_call_log (
				id, hula_id, remote_id, url, verb, payload,
				status, ok, response, updated_by, updated_at
			) VALUES (CAST(? AS UUID), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID.String(), nullString(row.LocalID), nullString(row.RemoteID), row.Target, row.Verb,
			param(row, 0), row.Status, row.Success, nullString(row.Response), row.UpdatedBy, row.Timestamp.UTC())
	default:
		return syncerr.Storage("audit.save", fmt.Errorf("unknown call kind %q", row.Kind))
	}
	if err != nil {
		return syncerr.Storage("audit.save", fmt.Errorf("failed to save call log row: %w", err))
	}
	return nil
}

// param returns the i-th parameter or NULL when absent.
func param(row *models.CallLogRow, i int) sql.NullString {
	if i >= len(row.Params) {
		return sql.NullString{}
	}
	return sql.NullString{String: row.Params[i], Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Query implements Store.
func (s *DuckDBStore) Query(ctx context.Context, filter Filter) ([]models.CallLogRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		stmt   string
		target string
		scan   func(*sql.Rows) (models.CallLogRow, error)
	)
	switch filter.Kind {
	case models.CallScript:
		stmt = `SELECT CAST(id AS VARCHAR), script, param1, param2, param3, param4, param5, param6,
			ok, status, response, updated_by, updated_at FROM odoo_call_log`
		target = "script"
		scan = scanScriptRow
	case models.CallHTTP:
		stmt = `SELECT CAST(id AS VARCHAR), hula_id, remote_id, url, verb, payload,
			status, ok, response, updated_by, updated_at FROM hula_call_log`
		target = "url"
		scan = scanHTTPRow
	default:
		return nil, syncerr.Storage("audit.query", fmt.Errorf("unknown call kind %q", filter.Kind))
	}

	wb := query.NewWhereBuilder().AddEquals(target, filter.Target).AddSince("updated_at", filter.Since.UTC())
	if filter.SuccessOnly {
		wb.AddBool("ok", true)
	}
	where, args := wb.BuildWithPrefix()
	stmt += " " + where + " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, syncerr.Storage("audit.query", fmt.Errorf("failed to query call log: %w", err))
	}
	defer rows.Close()

	var out []models.CallLogRow
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan call log row")
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, syncerr.Storage("audit.query", fmt.Errorf("error iterating call log: %w", err))
	}
	return out, nil
}

func scanScriptRow(rows *sql.Rows) (models.CallLogRow, error) {
	var (
		id       string
		params   [models.MaxCallParams]sql.NullString
		response sql.NullString
		row      = models.CallLogRow{Kind: models.CallScript}
	)
	err := rows.Scan(&id, &row.Target,
		&params[0], &params[1], &params[2], &params[3], &params[4], &params[5],
		&row.Success, &row.Status, &response, &row.UpdatedBy, &row.Timestamp)
	if err != nil {
		return row, err
	}
	if row.ID, err = uuid.Parse(id); err != nil {
		return row, err
	}

	last := -1
	for i, p := range params {
		if p.Valid {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		row.Params = append(row.Params, params[i].String)
	}
	row.Response = response.String
	return row, nil
}

func scanHTTPRow(rows *sql.Rows) (models.CallLogRow, error) {
	var (
		id, local, remote, payload, response sql.NullString
		row                                  = models.CallLogRow{Kind: models.CallHTTP}
	)
	err := rows.Scan(&id, &local, &remote, &row.Target, &row.Verb, &payload,
		&row.Status, &row.Success, &response, &row.UpdatedBy, &row.Timestamp)
	if err != nil {
		return row, err
	}
	if row.ID, err = uuid.Parse(id.String); err != nil {
		return row, err
	}
	row.LocalID = local.String
	row.RemoteID = remote.String
	if payload.Valid {
		row.Params = []string{payload.String}
	}
	row.Response = response.String
	return row, nil
}

// Prune implements Store.
func (s *DuckDBStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	where, args := query.NewWhereBuilder().AddBefore("updated_at", olderThan.UTC()).BuildWithPrefix()

	var total int64
	for _, table := range []string{database.TableOdooCallLog, database.TableHulaCallLog} {
		//nolint:gosec // table names are constants
		res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" "+where, args...)
		if err != nil {
			return total, syncerr.Storage("audit.prune", fmt.Errorf("failed to prune %s: %w", table, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, syncerr.Storage("audit.prune", fmt.Errorf("failed to get deleted count: %w", err))
		}
		total += n
	}

	if total > 0 {
		logging.Info().Int64("deleted", total).Time("older_than", olderThan).Msg("Pruned call log")
	}
	return total, nil
}
