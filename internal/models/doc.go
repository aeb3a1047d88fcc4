// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package models holds the records exchanged between the sync components:
// remote entities, Hula projects, sync log rows, call log rows and the
// wire shapes of the Hula, Hubspot and Odoo payloads.
package models
