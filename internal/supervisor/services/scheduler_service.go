// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package services

import (
	"context"
	"errors"
	"sync"

	"github.com/thejerf/suture/v4"

	"github.com/hulasync/hulasync/internal/logging"
	hsync "github.com/hulasync/hulasync/internal/sync"
)

// Runner is the scheduler loop. *sync.Scheduler satisfies it.
type Runner interface {
	Run(ctx context.Context) error
}

// SchedulerService wraps the scheduler as a supervised service.
type SchedulerService struct {
	runner Runner
	name   string

	mu    sync.Mutex
	fatal error
}

// NewSchedulerService creates the scheduler service.
func NewSchedulerService(runner Runner) *SchedulerService {
	return &SchedulerService{runner: runner, name: "scheduler"}
}

// Serve implements suture.Service. It returns
// suture.ErrTerminateSupervisorTree when Hula is unavailable; the cause is
// kept for FatalErr.
func (s *SchedulerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, hsync.ErrHulaUnavailable):
		s.mu.Lock()
		s.fatal = err
		s.mu.Unlock()
		logging.Error().Err(err).Msg("Hula unavailable, stopping")
		return suture.ErrTerminateSupervisorTree
	default:
		return err
	}
}

// FatalErr returns the error that terminated the tree, if any.
func (s *SchedulerService) FatalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

func (s *SchedulerService) String() string {
	return s.name
}
