// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

/*
Package reconcile computes and applies the difference between a remote
system's entities and the Hula projects already synced from it.

# Algorithm

Reconcile runs two passes over its inputs:

 1. Update pass. For every Sync Log row, the bound Hula project and the
    remote entity are looked up by id. When the name or description differ
    the project is updated with the entity's current values and a
    ProjectMatch is emitted. Rows whose project no longer exists in Hula
    are counted as orphaned; rows whose entity vanished are counted as
    stale. Neither is deleted.

 2. Insert pass. Every entity without a Sync Log row is pushed as a new
    Hula project and a row binding the remote id to the new project id is
    written. The membership index is updated after each push, so a remote
    id repeated in the same input is pushed once.

# Failure Handling

A failed push or Sync Log write skips that entity and is counted in
Result.Failed. Systemic failures (see syncerr.IsSystemic) stop the run and
are returned together with the partial result.
*/
package reconcile
