// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/reconcile"
)

// Ensure HulaPusher implements reconcile.Pusher
var _ reconcile.Pusher = (*HulaPusher)(nil)

// HulaPusher writes entities to Hula as projects. With needs enabled, an
// entity's staffing needs are pushed as project structures and the match
// count is the sum of the structures' matches.
type HulaPusher struct {
	hula      HulaAPI
	system    models.System
	pushNeeds bool
}

// NewHulaPusher creates a pusher for entities of system.
func NewHulaPusher(hula HulaAPI, system models.System, pushNeeds bool) *HulaPusher {
	return &HulaPusher{hula: hula, system: system, pushNeeds: pushNeeds}
}

func projectInput(e models.Entity) models.HulaProjectInput {
	return models.HulaProjectInput{
		Name:        e.Name,
		Description: e.DescriptionText(),
		IsHidden:    false,
	}
}

// Insert creates a Hula project for entity.
func (p *HulaPusher) Insert(ctx context.Context, entity models.Entity) (reconcile.PushResult, error) {
	ctx = WithCallRefs(ctx, "", entity.RemoteID)
	project, err := p.hula.CreateProject(ctx, projectInput(entity))
	if err != nil {
		return reconcile.PushResult{}, err
	}
	logging.Info().Str("system", string(p.system)).Str("remote_id", entity.RemoteID).Str("hula_id", project.ID).Str("name", entity.Name).Msg("Created Hula project")

	matches := project.Matches
	if p.pushNeeds && len(entity.Needs) > 0 {
		matches = p.pushStructures(WithCallRefs(ctx, project.ID, entity.RemoteID), project.ID, entity.Needs, nil)
	}
	return reconcile.PushResult{ID: project.ID, Matches: matches}, nil
}

// Update rewrites project with entity's current attributes.
func (p *HulaPusher) Update(ctx context.Context, project models.HulaProject, entity models.Entity) (reconcile.PushResult, error) {
	ctx = WithCallRefs(ctx, project.ID, entity.RemoteID)
	updated, err := p.hula.UpdateProject(ctx, project.ID, projectInput(entity))
	if err != nil {
		return reconcile.PushResult{}, err
	}
	logging.Info().Str("system", string(p.system)).Str("remote_id", entity.RemoteID).Str("hula_id", project.ID).Str("name", entity.Name).Msg("Updated Hula project")

	matches := updated.Matches
	if p.pushNeeds && len(entity.Needs) > 0 {
		existing, err := p.hula.ListProjectStructures(ctx, project.ID)
		if err != nil {
			logging.Warn().Err(err).Str("hula_id", project.ID).Msg("Failed to list project structures")
		} else {
			matches = p.pushStructures(ctx, project.ID, entity.Needs, existing)
		}
	}
	return reconcile.PushResult{ID: project.ID, Matches: matches}, nil
}

// pushStructures creates or updates one structure per need, matching
// existing structures by name, and returns the summed matches. The project
// itself is already written, so failures are logged and skipped.
func (p *HulaPusher) pushStructures(ctx context.Context, projectID string, needs []models.Need, existing []models.HulaProjectStructure) int {
	byName := make(map[string]models.HulaProjectStructure, len(existing))
	for _, s := range existing {
		byName[s.Name] = s
	}

	total := 0
	for _, need := range needs {
		s := needToStructure(projectID, need)
		var (
			out *models.HulaProjectStructure
			err error
		)
		if prev, ok := byName[need.Label]; ok {
			s.ID = prev.ID
			out, err = p.hula.UpdateProjectStructure(ctx, s)
		} else {
			out, err = p.hula.CreateProjectStructure(ctx, s)
		}
		if err != nil {
			logging.Warn().Err(err).Str("hula_id", projectID).Str("need", need.Label).Msg("Failed to push project structure")
			continue
		}
		total += out.Matches
	}
	return total
}

func needToStructure(projectID string, need models.Need) models.HulaProjectStructure {
	s := models.HulaProjectStructure{
		ProjectID: projectID,
		Name:      need.Label,
		Positions: need.Positions,
		Begin:     need.Begin,
		End:       need.End,
		Skills:    make([]models.HulaNeededSkill, 0, len(need.Skills)),
	}
	for _, sk := range need.Skills {
		s.Skills = append(s.Skills, models.HulaNeededSkill{
			Label:     sk.Skill,
			Level:     sk.Level,
			MinYears:  sk.MinYears,
			Mandatory: sk.Mandatory,
		})
	}
	return s
}
