// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

/*
Package sync talks to the remote systems and runs the sync passes.

# Remote Clients

  - HulaClient: cookie-authenticated Hula REST API (projects, project
    structures, skills). Wrapped by HulaCircuitBreakerClient.
  - HubspotClient: paged deals API with a client-side rate limit. Wrapped by
    HubspotCircuitBreakerClient.
  - OdooClient: runs the Odoo side-process scripts through a ScriptRunner
    (ExecRunner in production).

Every HTTP request and script run is recorded through a CallRecorder
(audit.Logger in production) before the result is returned.

# Modules

HubspotModule and OdooModule each run one fetch, reconcile, push cycle and
expose their current State. HulaPusher adapts the Hula client to the
reconcile.Pusher interface.

# Scheduler

Scheduler runs the enabled modules in fixed order (hubspot, then odoo),
opening a Hula session before and closing it after each pass, then sleeps.
A Hula authentication failure ends Run with ErrHulaUnavailable.
*/
package sync
