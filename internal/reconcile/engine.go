// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package reconcile

import (
	"context"
	"errors"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/synclog"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// ErrMissingRemoteID is reported for entities that carry no remote id.
var ErrMissingRemoteID = errors.New("entity has no remote id")

// PushResult is Hula's answer to a project insert or update.
type PushResult struct {
	ID      string
	Matches int
}

// Pusher writes projects to Hula.
type Pusher interface {
	Insert(ctx context.Context, entity models.Entity) (PushResult, error)
	Update(ctx context.Context, project models.HulaProject, entity models.Entity) (PushResult, error)
}

// Options configures an Engine.
type Options struct {
	// LinkBase is prefixed to a Hula project id to build ProjectMatch links.
	LinkBase string
	// UpdatedBy is stored on every Sync Log row written.
	UpdatedBy string
}

// Engine reconciles one remote system against Hula.
type Engine struct {
	system models.System
	pusher Pusher
	store  synclog.Store
	opts   Options
}

// NewEngine creates an engine for system.
func NewEngine(system models.System, pusher Pusher, store synclog.Store, opts Options) *Engine {
	return &Engine{system: system, pusher: pusher, store: store, opts: opts}
}

// Reconcile pushes updates for changed entities and inserts for new ones.
// The returned Result is valid even when err is non-nil.
func (e *Engine) Reconcile(ctx context.Context, remote []models.Entity, hula []models.HulaProject, log []models.SyncLogRow) (Result, error) {
	var res Result

	projects := make(map[string]models.HulaProject, len(hula))
	for _, p := range hula {
		projects[p.ID] = p
	}
	entities := make(map[string]models.Entity, len(remote))
	for _, ent := range remote {
		if _, ok := entities[ent.RemoteID]; !ok {
			entities[ent.RemoteID] = ent
		}
	}

	if err := e.updatePass(ctx, log, projects, entities, &res); err != nil {
		return res, err
	}
	if err := e.insertPass(ctx, remote, log, &res); err != nil {
		return res, err
	}

	logging.Info().
		Str("system", string(e.system)).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int("failed", res.Failed).
		Int("orphaned", res.Orphaned).
		Int("stale", res.Stale).
		Msg("Reconciliation complete")
	return res, nil
}

func (e *Engine) updatePass(ctx context.Context, log []models.SyncLogRow, projects map[string]models.HulaProject, entities map[string]models.Entity, res *Result) error {
	for _, row := range log {
		if err := ctx.Err(); err != nil {
			return err
		}
		project, ok := projects[row.LocalID]
		if !ok {
			res.Orphaned++
			logging.Debug().
				Str("system", string(e.system)).
				Str("remote_id", row.RemoteID).
				Str("hula_id", row.LocalID).
				Msg("Hula project for sync log row not found, skipping")
			continue
		}
		entity, ok := entities[row.RemoteID]
		if !ok {
			res.Stale++
			continue
		}
		if !changed(project, entity) {
			res.Unchanged++
			continue
		}

		pushed, err := e.pusher.Update(ctx, project, entity)
		metrics.RecordPush(string(e.system), "update", err)
		if err != nil {
			if syncerr.IsSystemic(err) {
				return err
			}
			res.Failed++
			logging.Warn().Err(err).
				Str("system", string(e.system)).
				Str("remote_id", entity.RemoteID).
				Str("hula_id", project.ID).
				Msg("Failed to update Hula project")
			continue
		}
		res.Updated++
		res.Matches = append(res.Matches, e.match(entity.RemoteID, project.ID, pushed.Matches))
	}
	return nil
}

func (e *Engine) insertPass(ctx context.Context, remote []models.Entity, log []models.SyncLogRow, res *Result) error {
	known := make(map[string]struct{}, len(log)+len(remote))
	for _, row := range log {
		known[row.RemoteID] = struct{}{}
	}

	for _, entity := range remote {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := known[entity.RemoteID]; ok {
			continue
		}
		if entity.RemoteID == "" {
			res.Failed++
			logging.Warn().Err(ErrMissingRemoteID).Str("system", string(e.system)).Str("name", entity.Name).Msg("Skipping entity")
			continue
		}

		pushed, err := e.pusher.Insert(ctx, entity)
		metrics.RecordPush(string(e.system), "insert", err)
		if err != nil {
			if syncerr.IsSystemic(err) {
				return err
			}
			res.Failed++
			logging.Warn().Err(err).
				Str("system", string(e.system)).
				Str("remote_id", entity.RemoteID).
				Msg("Failed to insert Hula project")
			continue
		}
		// The project exists in Hula now; never push it twice in one run.
		known[entity.RemoteID] = struct{}{}

		row := &models.SyncLogRow{
			System:    e.system,
			LocalID:   pushed.ID,
			RemoteID:  entity.RemoteID,
			Name:      entity.Name,
			UpdatedBy: e.opts.UpdatedBy,
		}
		if err := e.store.Insert(ctx, row); err != nil {
			if syncerr.IsSystemic(err) {
				return err
			}
			res.Failed++
			logging.Error().Err(err).
				Str("system", string(e.system)).
				Str("remote_id", entity.RemoteID).
				Str("hula_id", pushed.ID).
				Msg("Hula project created but sync log write failed")
			continue
		}
		res.Inserted++
		res.Matches = append(res.Matches, e.match(entity.RemoteID, pushed.ID, pushed.Matches))
	}
	return nil
}

func (e *Engine) match(remoteID, hulaID string, matches int) models.ProjectMatch {
	return models.ProjectMatch{
		RemoteID: remoteID,
		Matches:  matches,
		Link:     e.opts.LinkBase + hulaID,
	}
}

// changed reports whether the entity's mutable attributes differ from the
// project's. A nil description equals an empty one. Needs are not compared:
// Hula projects do not carry them, so edits that touch only needs are
// picked up when the name or description next changes.
func changed(project models.HulaProject, entity models.Entity) bool {
	return project.Name != entity.Name || project.DescriptionText() != entity.DescriptionText()
}
