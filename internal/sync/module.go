// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"sync/atomic"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/reconcile"
	"github.com/hulasync/hulasync/internal/synclog"
)

// State is the position of a module in its run.
type State int32

// Module states, in run order.
const (
	StateIdle State = iota
	StateAuthenticated
	StateSkillsSynced
	StateFetched
	StateReconciled
	StatePushed
	StateLoggedResults
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateAuthenticated: "authenticated",
	StateSkillsSynced:  "skills_synced",
	StateFetched:       "fetched",
	StateReconciled:    "reconciled",
	StatePushed:        "pushed",
	StateLoggedResults: "logged_results",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Module is one integrated system's sync run.
type Module interface {
	Name() string
	// Run performs one fetch, reconcile, push cycle. The Hula session is
	// already open.
	Run(ctx context.Context) error
	State() State
}

// driver holds what both modules share.
type driver struct {
	name   string
	system models.System
	hula   HulaAPI
	store  synclog.Store
	engine *reconcile.Engine
	state  atomic.Int32
	last   atomic.Pointer[reconcile.Result]
}

func newDriver(name string, system models.System, hula HulaAPI, store synclog.Store, engine *reconcile.Engine) *driver {
	return &driver{name: name, system: system, hula: hula, store: store, engine: engine}
}

// Name returns the module name used in MODULES.
func (d *driver) Name() string {
	return d.name
}

// State returns the current state.
func (d *driver) State() State {
	return State(d.state.Load())
}

// LastResult returns the result of the last completed reconciliation.
func (d *driver) LastResult() (reconcile.Result, bool) {
	r := d.last.Load()
	if r == nil {
		return reconcile.Result{}, false
	}
	return *r, true
}

func (d *driver) setState(s State) {
	d.state.Store(int32(s))
	metrics.ModuleState.WithLabelValues(d.name).Set(float64(s))
	logging.Debug().Str("module", d.name).Str("state", s.String()).Msg("Module state")
}

// reconcileEntities loads the Sync Log and the Hula project list and reconciles
// entities against them.
func (d *driver) reconcileEntities(ctx context.Context, entities []models.Entity) (reconcile.Result, error) {
	rows, err := d.store.LoadAll(ctx, d.system)
	if err != nil {
		return reconcile.Result{}, err
	}
	projects, err := d.hula.ListProjects(ctx)
	if err != nil {
		return reconcile.Result{}, err
	}
	res, err := d.engine.Reconcile(ctx, entities, projects, rows)
	metrics.RecordReconcile(string(d.system), res.Counts())
	if err != nil {
		return res, err
	}
	d.setState(StateReconciled)
	return res, nil
}

// logResults publishes the run's outcome.
func (d *driver) logResults(ctx context.Context, res reconcile.Result) {
	d.last.Store(&res)
	if n, err := d.store.Count(ctx, d.system); err == nil {
		metrics.SyncLogRows.WithLabelValues(string(d.system)).Set(float64(n))
	}
	for _, m := range res.Matches {
		logging.Debug().Str("module", d.name).Str("remote_id", m.RemoteID).Int("matches", m.Matches).Str("link", m.Link).Msg("Project match")
	}
	d.setState(StateLoggedResults)
}
