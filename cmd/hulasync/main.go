// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package main is the entry point of hulasync.
//
// hulasync mirrors projects from Hubspot (deals in one pipeline stage) and
// Odoo (projects with their staffing needs) into Hula. Every pass logs in to
// Hula, runs the enabled modules in order, logs out and sleeps.
//
// # Start-up
//
//  1. Configuration: defaults, optional config.yaml, environment (koanf v2)
//  2. Logging: zerolog from LOG_LEVEL, LOG_FORMAT and LOG_CALLER
//  3. Database: DuckDB at DATABASE_URL holding the sync logs and call logs
//  4. Clients: Hula and Hubspot over HTTP behind circuit breakers, Odoo
//     through its side-process scripts
//  5. Supervisor tree: the scheduler, plus the metrics listener when
//     METRICS_ADDR is set
//
// # Exit status
//
// SIGINT and SIGTERM stop the process between or during a pass with
// status 0. A configuration error or a failed Hula login or logout exits
// with status 1 and relies on the service manager to restart the process.
//
// # Example
//
//	export MODULES=hubspot,odoo
//	export HULA_URL=https://hula.example.com HULA_USER_ID=sync@example.com HULA_USER_PWD=...
//	export HUBSPOT_API_KEY=...
//	export ODOO_URL=https://odoo.example.com ODOO_DB=prod ODOO_USERNAME=admin ODOO_PASSWORD=...
//	export DATABASE_URL=/var/lib/hulasync/hulasync.duckdb
//	./hulasync
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hulasync/hulasync/internal/audit"
	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/database"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/reconcile"
	"github.com/hulasync/hulasync/internal/supervisor"
	"github.com/hulasync/hulasync/internal/supervisor/services"
	"github.com/hulasync/hulasync/internal/sync"
	"github.com/hulasync/hulasync/internal/synclog"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		logging.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	logging.Info().
		Strs("modules", cfg.Sync.Modules).
		Dur("sleep", cfg.Sync.SleepInterval()).
		Str("hula_url", logging.SanitizeURL(cfg.Hula.URL)).
		Str("hula_user", logging.SanitizeEmail(cfg.Hula.UserID)).
		Msg("Starting hulasync")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open database")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	syncLog := synclog.NewDuckDBStore(db.Conn())
	callLog := audit.NewDuckDBStore(db.Conn())
	recorder := audit.NewLogger(callLog, cfg.Hula.UserID)

	hula := sync.NewHulaCircuitBreakerClient(sync.NewHulaClient(&cfg.Hula, recorder), sync.DefaultBreakerSettings())
	engineOpts := reconcile.Options{LinkBase: cfg.Hula.ProjectLinkBase(), UpdatedBy: cfg.Hula.UserID}

	var modules []sync.Module
	if cfg.Sync.Enabled(config.ModuleHubspot) {
		source := sync.NewHubspotCircuitBreakerClient(sync.NewHubspotClient(&cfg.Hubspot, recorder), sync.DefaultBreakerSettings())
		engine := reconcile.NewEngine(models.SystemHubspot, sync.NewHulaPusher(hula, models.SystemHubspot, false), syncLog, engineOpts)
		modules = append(modules, sync.NewHubspotModule(source, hula, syncLog, engine))
	}
	if cfg.Sync.Enabled(config.ModuleOdoo) {
		odoo := sync.NewOdooClient(&cfg.Odoo, sync.NewExecRunner(&cfg.Odoo), recorder)
		engine := reconcile.NewEngine(models.SystemOdoo, sync.NewHulaPusher(hula, models.SystemOdoo, true), syncLog, engineOpts)
		bootstrap := audit.NewBootstrap(callLog, cfg.Sync.CallLogRetention)
		modules = append(modules, sync.NewOdooModule(odoo, hula, syncLog, engine, bootstrap, cfg.Odoo.SkillSync))
	}

	scheduler := sync.NewScheduler(&cfg.Sync, hula, modules...)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	schedulerSvc := services.NewSchedulerService(scheduler)
	tree.AddSyncService(schedulerSvc)

	if cfg.Metrics.Addr != "" {
		server := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           services.NewRouter(scheduler),
			ReadHeaderTimeout: 5 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 5*time.Second))
		logging.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics listener enabled")
	}

	err = tree.Serve(ctx)

	if fatal := schedulerSvc.FatalErr(); fatal != nil {
		logging.Error().Err(fatal).Msg("Stopped: Hula unavailable")
		return 1
	}
	if err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
		return 1
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop in time")
	}
	logging.Info().Msg("Shutdown complete")
	return 0
}
