// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/hulasync/hulasync/internal/audit"
	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/reconcile"
	"github.com/hulasync/hulasync/internal/synclog"
)

// Ensure OdooModule implements Module
var _ Module = (*OdooModule)(nil)

// OdooModule syncs Odoo projects into Hula and writes match counts and
// links back to Odoo. Before fetching it pushes Hula's skill taxonomy to
// Odoo, and it fetches incrementally based on the call log.
type OdooModule struct {
	*driver
	odoo      *OdooClient
	bootstrap *audit.Bootstrap
	skillSync bool
	now       func() time.Time
}

// NewOdooModule creates the Odoo module.
func NewOdooModule(odoo *OdooClient, hula HulaAPI, store synclog.Store, engine *reconcile.Engine, bootstrap *audit.Bootstrap, skillSync bool) *OdooModule {
	return &OdooModule{
		driver:    newDriver(config.ModuleOdoo, models.SystemOdoo, hula, store, engine),
		odoo:      odoo,
		bootstrap: bootstrap,
		skillSync: skillSync,
		now:       time.Now,
	}
}

// Run implements Module.
func (m *OdooModule) Run(ctx context.Context) error {
	defer m.setState(StateIdle)
	m.setState(StateAuthenticated)

	if m.skillSync {
		m.syncSkills(ctx)
		m.setState(StateSkillsSynced)
	}

	lag, err := m.bootstrap.Startup(ctx, m.now())
	if err != nil {
		return fmt.Errorf("failed to bootstrap odoo fetch: %w", err)
	}

	fetch, err := m.odoo.FetchProjects(ctx, lag)
	if err != nil {
		return fmt.Errorf("failed to fetch odoo projects: %w", err)
	}
	m.setState(StateFetched)

	res, err := m.reconcileEntities(ctx, fetch.Entities)
	if err != nil {
		err = fmt.Errorf("failed to reconcile odoo projects: %w", err)
		fetch.Finish(ctx, err)
		return err
	}

	if err := m.odoo.PutMatches(ctx, res.Matches); err != nil {
		err = fmt.Errorf("failed to write matches to odoo: %w", err)
		fetch.Finish(ctx, err)
		return err
	}
	fetch.Finish(ctx, nil)
	m.setState(StatePushed)
	logging.Info().Int("matches", len(res.Matches)).Int("pushed", res.Pushed()).Str("lag", lag.String()).Msg("Odoo sync complete")

	m.logResults(ctx, res)
	return nil
}

// syncSkills pushes Hula's skill labels to Odoo and regenerates the
// project skills. Failures are logged and never stop the run.
func (m *OdooModule) syncSkills(ctx context.Context) {
	skills, err := m.hula.ListSkills(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to list Hula skills, skipping skill sync")
		return
	}
	labels := make([]string, 0, len(skills))
	for _, s := range skills {
		labels = append(labels, s.Label)
	}

	created, err := m.odoo.PutSkills(ctx, labels)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to push skills to Odoo")
	} else {
		logging.Info().Int("skills", len(labels)).Strs("created", created).Msg("Pushed skills to Odoo")
	}

	if err := m.odoo.FillProjectSkills(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to regenerate Odoo project skills")
	}
}
