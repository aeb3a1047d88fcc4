// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hulasync/hulasync/internal/logging"
	hsync "github.com/hulasync/hulasync/internal/sync"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService wraps an HTTP server as a supervised service.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService creates the service. A non-positive shutdownTimeout
// means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return h.name
}

// PassReporter exposes the last scheduler pass. *sync.Scheduler satisfies
// it.
type PassReporter interface {
	LastPass() (hsync.PassSummary, bool)
}

// Health is the /healthz response body.
type Health struct {
	Status   string            `json:"status"`
	LastPass *time.Time        `json:"last_pass,omitempty"`
	Duration string            `json:"duration,omitempty"`
	Modules  map[string]string `json:"modules,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Health statuses.
const (
	HealthStarting = "starting"
	HealthOK       = "ok"
	HealthFailing  = "failing"
)

// NewRouter builds the metrics and health router.
func NewRouter(passes PassReporter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		health, status := buildHealth(passes)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logging.Warn().Err(err).Msg("Failed to write health response")
		}
	})
	return r
}

// buildHealth reports module failures in the body but keeps 200; only a
// failed pass makes the process unhealthy.
func buildHealth(passes PassReporter) (Health, int) {
	pass, ok := passes.LastPass()
	if !ok {
		return Health{Status: HealthStarting}, http.StatusOK
	}

	started := pass.Started
	h := Health{
		Status:   HealthOK,
		LastPass: &started,
		Duration: pass.Duration.String(),
	}
	for name, err := range pass.Modules {
		if h.Modules == nil {
			h.Modules = make(map[string]string, len(pass.Modules))
		}
		if err != nil {
			h.Modules[name] = err.Error()
		} else {
			h.Modules[name] = HealthOK
		}
	}
	if pass.Err != nil {
		h.Status = HealthFailing
		h.Error = pass.Err.Error()
		return h, http.StatusServiceUnavailable
	}
	return h, http.StatusOK
}
