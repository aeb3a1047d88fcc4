// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"fmt"

	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/reconcile"
	"github.com/hulasync/hulasync/internal/synclog"
)

// Ensure HubspotModule implements Module
var _ Module = (*HubspotModule)(nil)

// HubspotModule syncs deals in the configured pipeline stage into Hula
// projects. Hubspot receives no write-back; matches are only logged.
type HubspotModule struct {
	*driver
	source EntitySource
}

// NewHubspotModule creates the Hubspot module.
func NewHubspotModule(source EntitySource, hula HulaAPI, store synclog.Store, engine *reconcile.Engine) *HubspotModule {
	return &HubspotModule{
		driver: newDriver(config.ModuleHubspot, models.SystemHubspot, hula, store, engine),
		source: source,
	}
}

// Run implements Module.
func (m *HubspotModule) Run(ctx context.Context) error {
	defer m.setState(StateIdle)
	m.setState(StateAuthenticated)

	entities, err := m.source.FetchEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch hubspot deals: %w", err)
	}
	m.setState(StateFetched)

	res, err := m.reconcileEntities(ctx, entities)
	if err != nil {
		return fmt.Errorf("failed to reconcile hubspot deals: %w", err)
	}

	m.setState(StatePushed)
	logging.Info().Int("matches", len(res.Matches)).Int("pushed", res.Pushed()).Msg("Hubspot sync complete")
	m.logResults(ctx, res)
	return nil
}
