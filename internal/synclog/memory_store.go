// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package synclog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// MemoryStore implements Store in memory. Used by tests and dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[models.System][]models.SyncLogRow
	now  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[models.System][]models.SyncLogRow),
		now:  time.Now,
	}
}

// LoadAll implements Store.
func (s *MemoryStore) LoadAll(_ context.Context, system models.System) ([]models.SyncLogRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SyncLogRow, len(s.rows[system]))
	copy(out, s.rows[system])
	return out, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, row *models.SyncLogRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := prepareRow(row, s.now()); err != nil {
		return err
	}
	for _, existing := range s.rows[row.System] {
		if existing.RemoteID == row.RemoteID {
			return syncerr.Duplicate("synclog.insert", fmt.Sprintf("%s remote id %s", row.System, row.RemoteID))
		}
	}
	s.rows[row.System] = append(s.rows[row.System], *row)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, system models.System) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows[system])), nil
}
