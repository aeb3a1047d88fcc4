// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
)

// ErrHulaUnavailable is returned by Run when a Hula session cannot be
// opened or closed. The process is expected to exit and be restarted.
var ErrHulaUnavailable = errors.New("hula unavailable")

// logoutTimeout bounds the session close after a cancelled pass.
const logoutTimeout = 10 * time.Second

// PassSummary describes the last finished pass.
type PassSummary struct {
	Started  time.Time
	Duration time.Duration
	Modules  map[string]error
	Err      error
}

// Scheduler runs the enabled modules forever.
type Scheduler struct {
	hula    HulaAPI
	modules []Module
	sleep   time.Duration

	mu       sync.RWMutex
	lastPass *PassSummary
}

// NewScheduler creates a scheduler running the modules enabled in cfg, in
// the order of config.KnownModules. Unknown module names are logged and
// ignored.
func NewScheduler(cfg *config.SyncConfig, hula HulaAPI, available ...Module) *Scheduler {
	for _, name := range cfg.UnknownModules() {
		logging.Error().Str("module", name).Msg("Unknown module")
	}

	byName := make(map[string]Module, len(available))
	for _, m := range available {
		byName[m.Name()] = m
	}
	var modules []Module
	for _, name := range config.KnownModules {
		if !cfg.Enabled(name) {
			continue
		}
		if m, ok := byName[name]; ok {
			modules = append(modules, m)
		}
	}

	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name())
	}
	logging.Info().Str("modules", strings.Join(names, ",")).Dur("sleep", cfg.SleepInterval()).Msg("Scheduler configured")

	return &Scheduler{hula: hula, modules: modules, sleep: cfg.SleepInterval()}
}

// Modules returns the modules run by each pass, in order.
func (s *Scheduler) Modules() []Module {
	return append([]Module(nil), s.modules...)
}

// Run executes passes until ctx is cancelled or Hula becomes unavailable.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.RunPass(ctx); err != nil {
			return err
		}

		timer := time.NewTimer(s.sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunPass runs one pass: open the Hula session, run every module, close the
// session. Module errors are logged and do not stop the pass; only session
// failures and cancellation are returned.
func (s *Scheduler) RunPass(ctx context.Context) error {
	summary := &PassSummary{Started: time.Now(), Modules: make(map[string]error, len(s.modules))}
	defer s.finish(summary)

	if err := ctx.Err(); err != nil {
		summary.Err = err
		return err
	}

	if err := s.hula.Login(ctx); err != nil {
		logging.Error().Err(err).Msg("Failed to authenticate against Hula")
		summary.Err = fmt.Errorf("%w: login: %w", ErrHulaUnavailable, err)
		if ctx.Err() != nil {
			summary.Err = ctx.Err()
		}
		return summary.Err
	}

	for _, m := range s.modules {
		if ctx.Err() != nil {
			break
		}
		err := m.Run(ctx)
		summary.Modules[m.Name()] = err
		metrics.RecordModuleRun(m.Name(), err)
		if err != nil {
			logging.Error().Err(err).Str("module", m.Name()).Msg("Module failed")
		}
	}

	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	if err := s.hula.Logout(logoutCtx); err != nil {
		logging.Error().Err(err).Msg("Failed to close Hula session")
		summary.Err = fmt.Errorf("%w: logout: %w", ErrHulaUnavailable, err)
		return summary.Err
	}

	if err := ctx.Err(); err != nil {
		summary.Err = err
		return err
	}
	return nil
}

func (s *Scheduler) finish(summary *PassSummary) {
	summary.Duration = time.Since(summary.Started)
	metrics.RecordPass(summary.Duration, errors.Is(summary.Err, ErrHulaUnavailable))

	s.mu.Lock()
	s.lastPass = summary
	s.mu.Unlock()

	failed := 0
	for _, err := range summary.Modules {
		if err != nil {
			failed++
		}
	}
	logging.Info().Dur("duration", summary.Duration).Int("modules", len(summary.Modules)).Int("failed", failed).Msg("Pass finished")
}

// LastPass returns the summary of the last finished pass.
func (s *Scheduler) LastPass() (PassSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastPass == nil {
		return PassSummary{}, false
	}
	return *s.lastPass, true
}
