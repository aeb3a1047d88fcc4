// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package models

// HulaProject is a project as stored in Hula.
type HulaProject struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsHidden    bool    `json:"is_hidden"`
	Matches     int     `json:"matches,omitempty"`
}

// DescriptionText returns the description, treating an absent one as empty.
func (p HulaProject) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// HulaProjectInput is the body of a project create or update.
type HulaProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsHidden    bool   `json:"is_hidden"`
}

// HulaProjectStructure is a staffing slot attached to a Hula project.
type HulaProjectStructure struct {
	ID        string            `json:"id,omitempty"`
	ProjectID string            `json:"project_id" validate:"required"`
	Name      string            `json:"name"`
	Positions int               `json:"positions"`
	Begin     string            `json:"begin,omitempty"`
	End       string            `json:"end,omitempty"`
	Skills    []HulaNeededSkill `json:"skills"`
	Matches   int               `json:"matches,omitempty"`
}

// HulaNeededSkill is a skill requirement inside a project structure.
type HulaNeededSkill struct {
	Label     string `json:"label"`
	Level     string `json:"level,omitempty"`
	MinYears  int    `json:"min_years,omitempty"`
	Mandatory bool   `json:"mandatory"`
}

// HulaSkill is an entry of the Hula skill taxonomy.
type HulaSkill struct {
	ID    string `json:"id"`
	Label string `json:"label" validate:"required"`
}

// HulaCredentials is the body of POST /api/auth.
type HulaCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
