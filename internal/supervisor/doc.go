// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

/*
Package supervisor runs the long-lived parts of hulasync under a suture v4
supervision tree.

The tree has two layers:

	RootSupervisor ("hulasync")
	├── SyncSupervisor ("sync-layer")
	│   └── SchedulerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (metrics and health, if METRICS_ADDR is set)

A crashed service is restarted with backoff. The scheduler is the
exception: when Hula cannot be reached it returns
suture.ErrTerminateSupervisorTree, the whole tree stops, and the process
exits non-zero so that an external supervisor restarts it.

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.
*/
package supervisor
