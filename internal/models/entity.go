// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package models

// System identifies a remote system whose projects are mirrored into Hula.
type System string

const (
	SystemHubspot System = "hubspot"
	SystemOdoo    System = "odoo"
)

// Valid reports whether s names a known system.
func (s System) Valid() bool {
	return s == SystemHubspot || s == SystemOdoo
}

// Entity is a project as seen by a remote system. It is rebuilt on every
// fetch and never persisted.
type Entity struct {
	RemoteID    string
	Name        string
	Description *string
	Stage       string
	Needs       []Need
}

// DescriptionText returns the description, treating an absent one as empty.
func (e Entity) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// Need is a staffing need attached to an Odoo project.
type Need struct {
	Label     string      `json:"label"`
	Positions int         `json:"nbr"`
	Begin     string      `json:"begin"`
	End       string      `json:"end"`
	Skills    []NeedSkill `json:"skills"`
}

// NeedSkill is one required skill of a Need.
type NeedSkill struct {
	Skill     string `json:"skill"`
	Level     string `json:"level"`
	MinYears  int    `json:"min_years"`
	Mandatory bool   `json:"mandatory"`
}

// ProjectMatch reports back to a remote system which Hula project an entity
// maps to. Matches is diagnostic only.
type ProjectMatch struct {
	RemoteID string `json:"id"`
	Matches  int    `json:"matches"`
	Link     string `json:"link"`
}
