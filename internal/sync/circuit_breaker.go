// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// BreakerSettings configures a circuit breaker.
type BreakerSettings struct {
	// MinRequests before the failure ratio is evaluated.
	MinRequests uint32
	// FailureRatio at or above which the circuit opens.
	FailureRatio float64
	// ConsecutiveFailures that open the circuit regardless of ratio.
	ConsecutiveFailures uint32
	// Interval after which counts reset in the closed state.
	Interval time.Duration
	// Timeout before an open circuit lets a probe through.
	Timeout time.Duration
}

// DefaultBreakerSettings returns the settings used for Hula and Hubspot.
// A pass makes few requests, so a short run of failures is enough to stop
// hammering a dead endpoint for the rest of the pass.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:         10,
		FailureRatio:        0.6,
		ConsecutiveFailures: 5,
		Interval:            time.Minute,
		Timeout:             2 * time.Minute,
	}
}

// CircuitBreaker guards calls to one remote system.
//
// Protocol errors (a rejected payload, a malformed answer) mean the remote
// is up and do not count as failures. Neither do failed per-entity writes
// run through executeWrite: one payload Hula keeps rejecting must not open
// the circuit for the rest of the pass.
type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewCircuitBreaker creates a named circuit breaker.
func NewCircuitBreaker(name string, settings BreakerSettings) *CircuitBreaker {
	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if settings.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= settings.ConsecutiveFailures {
				logging.Warn().Str("name", name).Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= settings.FailureRatio
			if shouldTrip {
				logging.Warn().Str("name", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			var we *writeError
			return err == nil || syncerr.Is(err, syncerr.KindProtocol) || errors.As(err, &we)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("name", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreaker{cb: cb, name: name}
}

// State returns the current breaker state as text.
func (b *CircuitBreaker) State() string {
	return stateToString(b.cb.State())
}

// execute runs fn under breaker protection. A rejected call returns a
// transport error wrapping syncerr.ErrCircuitOpen.
func (b *CircuitBreaker) execute(op string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	return b.observe(op, result, err)
}

// observe maps a breaker outcome to metrics and the returned error.
func (b *CircuitBreaker) observe(op string, result any, err error) (any, error) {
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("name", b.name).Str("op", op).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, syncerr.Transport(op, fmt.Errorf("%w: %s", syncerr.ErrCircuitOpen, b.name))
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// writeError carries a per-entity write failure through the breaker without
// counting it.
type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// executeWrite runs a per-entity write. It is rejected while the circuit is
// open, but its failures never trip it.
func (b *CircuitBreaker) executeWrite(op string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(func() (any, error) {
		result, err := fn()
		if err != nil {
			return result, &writeError{err: err}
		}
		return result, nil
	})

	var we *writeError
	if errors.As(err, &we) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "write_failure").Inc()
		return nil, we.err
	}
	return b.observe(op, result, err)
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// HulaCircuitBreakerClient wraps a HulaAPI with a circuit breaker.
// Login and Logout bypass the breaker: their failures are fatal to the pass
// anyway, and a fresh session must always be attempted.
type HulaCircuitBreakerClient struct {
	client HulaAPI
	cb     *CircuitBreaker
}

// Ensure HulaCircuitBreakerClient implements HulaAPI
var _ HulaAPI = (*HulaCircuitBreakerClient)(nil)

// NewHulaCircuitBreakerClient wraps client.
func NewHulaCircuitBreakerClient(client HulaAPI, settings BreakerSettings) *HulaCircuitBreakerClient {
	return &HulaCircuitBreakerClient{client: client, cb: NewCircuitBreaker("hula-api", settings)}
}

// Login opens a Hula session.
func (c *HulaCircuitBreakerClient) Login(ctx context.Context) error {
	return c.client.Login(ctx)
}

// Logout closes the Hula session.
func (c *HulaCircuitBreakerClient) Logout(ctx context.Context) error {
	return c.client.Logout(ctx)
}

// ListProjects lists projects with circuit breaker protection
func (c *HulaCircuitBreakerClient) ListProjects(ctx context.Context) ([]models.HulaProject, error) {
	return castResult[[]models.HulaProject](c.cb.execute("hula.list_projects", func() (any, error) {
		return c.client.ListProjects(ctx)
	}))
}

// CreateProject creates a project; it is rejected while the circuit is open
func (c *HulaCircuitBreakerClient) CreateProject(ctx context.Context, in models.HulaProjectInput) (*models.HulaProject, error) {
	return castResult[*models.HulaProject](c.cb.executeWrite("hula.create_project", func() (any, error) {
		return c.client.CreateProject(ctx, in)
	}))
}

// UpdateProject updates a project; it is rejected while the circuit is open
func (c *HulaCircuitBreakerClient) UpdateProject(ctx context.Context, id string, in models.HulaProjectInput) (*models.HulaProject, error) {
	return castResult[*models.HulaProject](c.cb.executeWrite("hula.update_project", func() (any, error) {
		return c.client.UpdateProject(ctx, id, in)
	}))
}

// ListProjectStructures lists structures with circuit breaker protection
func (c *HulaCircuitBreakerClient) ListProjectStructures(ctx context.Context, projectID string) ([]models.HulaProjectStructure, error) {
	return castResult[[]models.HulaProjectStructure](c.cb.execute("hula.list_project_structures", func() (any, error) {
		return c.client.ListProjectStructures(ctx, projectID)
	}))
}

// CreateProjectStructure creates a structure; it is rejected while the circuit is open
func (c *HulaCircuitBreakerClient) CreateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	return castResult[*models.HulaProjectStructure](c.cb.executeWrite("hula.create_project_structure", func() (any, error) {
		return c.client.CreateProjectStructure(ctx, s)
	}))
}

// UpdateProjectStructure updates a structure; it is rejected while the circuit is open
func (c *HulaCircuitBreakerClient) UpdateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	return castResult[*models.HulaProjectStructure](c.cb.executeWrite("hula.update_project_structure", func() (any, error) {
		return c.client.UpdateProjectStructure(ctx, s)
	}))
}

// ListSkills lists skills with circuit breaker protection
func (c *HulaCircuitBreakerClient) ListSkills(ctx context.Context) ([]models.HulaSkill, error) {
	return castResult[[]models.HulaSkill](c.cb.execute("hula.list_skills", func() (any, error) {
		return c.client.ListSkills(ctx)
	}))
}

// HubspotCircuitBreakerClient wraps a Hubspot deal source with a circuit
// breaker.
type HubspotCircuitBreakerClient struct {
	client EntitySource
	cb     *CircuitBreaker
}

// Ensure HubspotCircuitBreakerClient implements EntitySource
var _ EntitySource = (*HubspotCircuitBreakerClient)(nil)

// NewHubspotCircuitBreakerClient wraps client.
func NewHubspotCircuitBreakerClient(client EntitySource, settings BreakerSettings) *HubspotCircuitBreakerClient {
	return &HubspotCircuitBreakerClient{client: client, cb: NewCircuitBreaker("hubspot-api", settings)}
}

// FetchEntities fetches deals with circuit breaker protection
func (c *HubspotCircuitBreakerClient) FetchEntities(ctx context.Context) ([]models.Entity, error) {
	return castResult[[]models.Entity](c.cb.execute("hubspot.fetch_deals", func() (any, error) {
		return c.client.FetchEntities(ctx)
	}))
}
