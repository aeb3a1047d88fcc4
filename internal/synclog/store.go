// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package synclog persists the mapping between remote entities and the Hula
// projects created for them. Rows are never deleted.
package synclog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// Store is the durable sync log.
type Store interface {
	// LoadAll returns every row of the system, oldest first.
	LoadAll(ctx context.Context, system models.System) ([]models.SyncLogRow, error)

	// Insert persists row. ID and UpdatedAt are filled in when zero. A second
	// row for the same (system, remote id) fails with syncerr.ErrDuplicate.
	Insert(ctx context.Context, row *models.SyncLogRow) error

	// Count returns the number of rows of the system.
	Count(ctx context.Context, system models.System) (int64, error)
}

// prepareRow fills defaults and checks the fields the tables constrain.
func prepareRow(row *models.SyncLogRow, now time.Time) error {
	if row == nil {
		return syncerr.Storage("synclog.insert", fmt.Errorf("row cannot be nil"))
	}
	if !row.System.Valid() {
		return syncerr.Storage("synclog.insert", fmt.Errorf("unknown system %q", row.System))
	}
	if row.RemoteID == "" {
		return syncerr.Protocol("synclog.insert", fmt.Errorf("remote id is empty"))
	}
	if row.System == models.SystemOdoo {
		if _, err := strconv.ParseInt(row.RemoteID, 10, 32); err != nil {
			return syncerr.Protocol("synclog.insert", fmt.Errorf("odoo id %q is not an integer: %w", row.RemoteID, err))
		}
	}
	if _, err := uuid.Parse(row.LocalID); err != nil {
		return syncerr.Protocol("synclog.insert", fmt.Errorf("hula id %q is not a UUID: %w", row.LocalID, err))
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now.UTC()
	}
	return nil
}
