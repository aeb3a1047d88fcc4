// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/models"
)

// MemoryStore implements Store in memory. Data is lost on restart.
type MemoryStore struct {
	rows []models.CallLogRow
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, row *models.CallLogRow) error {
	if row == nil {
		return fmt.Errorf("row cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	cp := *row
	cp.Params = append([]string(nil), row.Params...)
	s.rows = append(s.rows, cp)
	return nil
}

// Query implements Store.
func (s *MemoryStore) Query(_ context.Context, filter Filter) ([]models.CallLogRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.CallLogRow
	for i := range s.rows {
		if filter.matches(&s.rows[i]) {
			out = append(out, s.rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	var removed int64
	for _, r := range s.rows {
		if r.Timestamp.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}
