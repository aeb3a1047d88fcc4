// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

/*
Package services adapts hulasync components to suture.Service.

SchedulerService runs the sync scheduler. A pass that cannot reach Hula
terminates the supervisor tree; any other failure lets suture restart the
scheduler with backoff.

HTTPServerService runs an *http.Server with graceful shutdown. NewRouter
builds the chi router it serves:

	GET /metrics   Prometheus exposition
	GET /healthz   JSON summary of the last pass

Every service implements fmt.Stringer so supervisor events name it.
*/
package services
