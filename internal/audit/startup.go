// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
)

// PrimaryFetchScript is the Odoo script whose successful runs drive the
// incremental fetch window.
const PrimaryFetchScript = "odoo_get.py"

// lagMarkerParam is the 0-based parameter index of the incremental marker
// (the lag argument) in odoo_get.py runs. Empty means a full fetch.
const lagMarkerParam = 4

// lagSlackMinutes widens the window so no change is missed between passes.
const lagSlackMinutes = 2

// Lag is the incremental fetch window. A zero value requests a full fetch.
type Lag struct {
	Minutes int
	Valid   bool
}

// String renders the lag as the script argument.
func (l Lag) String() string {
	if !l.Valid {
		return ""
	}
	return fmt.Sprintf("%d", l.Minutes)
}

// Bootstrap prepares the call log for a pass.
type Bootstrap struct {
	store     Store
	retention time.Duration
}

// NewBootstrap creates a Bootstrap with the given retention window.
func NewBootstrap(store Store, retention time.Duration) *Bootstrap {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &Bootstrap{store: store, retention: retention}
}

// Startup prunes rows older than the retention window, then computes the
// incremental fetch lag from the last successful run of the fetch script.
//
// The most recent successful run sets the lag. When a full fetch
// (empty marker) succeeded the same day, that run decides whether the
// window is "today"; otherwise the most recent run does. If the deciding
// run is not from today, or there is none, a full fetch is requested.
// "Today" is the calendar day of now in now's location.
func (b *Bootstrap) Startup(ctx context.Context, now time.Time) (Lag, error) {
	pruned, err := b.store.Prune(ctx, now.Add(-b.retention))
	if err != nil {
		return Lag{}, fmt.Errorf("failed to prune call log: %w", err)
	}
	metrics.CallLogPruned.Add(float64(pruned))

	recent, err := b.store.Query(ctx, Filter{
		Kind:        models.CallScript,
		Target:      PrimaryFetchScript,
		SuccessOnly: true,
		Limit:       1,
	})
	if err != nil {
		return Lag{}, fmt.Errorf("failed to read last fetch: %w", err)
	}
	if len(recent) == 0 {
		logging.Info().Msg("No previous fetch in call log, requesting full fetch")
		return Lag{}, nil
	}
	mostRecent := recent[0]

	dayRef := mostRecent
	today, err := b.store.Query(ctx, Filter{
		Kind:        models.CallScript,
		Target:      PrimaryFetchScript,
		SuccessOnly: true,
		Since:       startOfDay(now),
	})
	if err != nil {
		return Lag{}, fmt.Errorf("failed to read today's fetches: %w", err)
	}
	for _, row := range today {
		if row.Param(lagMarkerParam) == "" {
			dayRef = row
			break
		}
	}

	if !sameDay(dayRef.Timestamp, now) {
		logging.Info().Time("last_fetch", mostRecent.Timestamp).Msg("Last fetch not from today, requesting full fetch")
		return Lag{}, nil
	}

	lag := Lag{Minutes: int(now.Sub(mostRecent.Timestamp).Minutes()) + lagSlackMinutes, Valid: true}
	metrics.FetchLagMinutes.Set(float64(lag.Minutes))
	logging.Info().Int("lag_minutes", lag.Minutes).Time("last_fetch", mostRecent.Timestamp).Msg("Requesting incremental fetch")
	return lag, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(ts, now time.Time) bool {
	y1, m1, d1 := ts.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
