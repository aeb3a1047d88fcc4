// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// OdooText decodes an Odoo field that is either a string or the literal
// false Odoo uses for empty values.
type OdooText struct {
	Value string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *OdooText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*t = OdooText{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = OdooText{Value: s, Valid: true}
	return nil
}

// Ptr returns nil for an empty field.
func (t OdooText) Ptr() *string {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}

// OdooNumber decodes an Odoo integer that may be false.
type OdooNumber int

// UnmarshalJSON implements json.Unmarshaler.
func (n *OdooNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = OdooNumber(int(f))
	return nil
}

// OdooProject is one element of the odoo_get.py output.
type OdooProject struct {
	ID          int        `json:"id" validate:"required,gt=0"`
	Name        string     `json:"name" validate:"required"`
	Description OdooText   `json:"description"`
	Needs       []OdooNeed `json:"needs"`
}

// OdooNeed is a staffing need as emitted by odoo_get.py.
type OdooNeed struct {
	Label  OdooText        `json:"label"`
	Nbr    OdooNumber      `json:"nbr"`
	Begin  OdooText        `json:"begin"`
	End    OdooText        `json:"end"`
	Skills []OdooNeedSkill `json:"skills"`
}

// OdooNeedSkill is a skill requirement as emitted by odoo_get.py.
type OdooNeedSkill struct {
	Skill     OdooText   `json:"skill"`
	Level     OdooText   `json:"level"`
	MinYears  OdooNumber `json:"min_years"`
	Mandatory bool       `json:"mandatory"`
}

// Entity converts the script record into a remote entity.
func (p OdooProject) Entity() Entity {
	e := Entity{
		RemoteID:    strconv.Itoa(p.ID),
		Name:        p.Name,
		Description: p.Description.Ptr(),
	}
	for _, n := range p.Needs {
		need := Need{
			Label:     n.Label.Value,
			Positions: int(n.Nbr),
			Begin:     n.Begin.Value,
			End:       n.End.Value,
		}
		for _, s := range n.Skills {
			need.Skills = append(need.Skills, NeedSkill{
				Skill:     s.Skill.Value,
				Level:     s.Level.Value,
				MinYears:  int(s.MinYears),
				Mandatory: s.Mandatory,
			})
		}
		e.Needs = append(e.Needs, need)
	}
	return e
}

// OdooSkillLabel is one element of the odoo_put_skills.py argument.
type OdooSkillLabel struct {
	Label string `json:"label"`
}
