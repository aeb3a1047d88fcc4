// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package models

// HubspotDealsPage is one page of GET /deals/v1/deal/paged.
type HubspotDealsPage struct {
	Deals   []HubspotDeal `json:"deals" validate:"dive"`
	HasMore bool          `json:"hasMore"`
	Offset  int64         `json:"offset"`
}

// HubspotDeal is a single deal with the requested properties.
type HubspotDeal struct {
	DealID     int64                      `json:"dealId" validate:"required"`
	Properties map[string]HubspotProperty `json:"properties"`
}

// HubspotProperty wraps a property value.
type HubspotProperty struct {
	Value string `json:"value"`
}

// Property returns the value of the named property, or "" when absent.
func (d HubspotDeal) Property(name string) string {
	if p, ok := d.Properties[name]; ok {
		return p.Value
	}
	return ""
}
