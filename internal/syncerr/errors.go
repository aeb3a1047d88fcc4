// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package syncerr defines the error taxonomy shared by the sync components.
//
// Every failure that crosses a component boundary is wrapped in an *Error
// carrying a Kind. Callers branch on the kind rather than on error strings:
//
//	if syncerr.IsSystemic(err) {
//	    return err // abort the pass
//	}
//	logging.Warn().Err(err).Msg("Skipping entity")
package syncerr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	// KindTransport covers network failures, timeouts and non-2xx HTTP
	// responses, plus non-zero exits of the Odoo side-process.
	KindTransport Kind = "transport"

	// KindProtocol covers responses that could not be decoded or failed
	// schema validation.
	KindProtocol Kind = "protocol"

	// KindStorage covers database failures including uniqueness conflicts.
	KindStorage Kind = "storage"

	// KindConfig covers missing or malformed configuration.
	KindConfig Kind = "config"

	// KindAuth covers rejected or expired Hula sessions.
	KindAuth Kind = "auth"
)

// Sentinel errors wrapped by the typed errors below.
var (
	// ErrUnauthorized is returned when Hula rejects the session cookie.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicate is returned when a row violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")

	// ErrCircuitOpen is returned when a remote is short-circuited.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Error is a classified failure.
type Error struct {
	Kind      Kind
	Op        string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with kind and operation name. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Transport wraps a network or process failure.
func Transport(op string, err error) error {
	return New(KindTransport, op, err)
}

// Protocol wraps a decode or schema failure.
func Protocol(op string, err error) error {
	return New(KindProtocol, op, err)
}

// Storage wraps a database failure.
func Storage(op string, err error) error {
	return New(KindStorage, op, err)
}

// Config wraps a configuration failure.
func Config(op string, err error) error {
	return New(KindConfig, op, err)
}

// Auth wraps a session failure.
func Auth(op string, err error) error {
	return New(KindAuth, op, err)
}

// Duplicate returns a retryable storage error wrapping ErrDuplicate.
func Duplicate(op string, detail string) error {
	return &Error{
		Kind:      KindStorage,
		Op:        op,
		Retryable: true,
		Err:       fmt.Errorf("%w: %s", ErrDuplicate, detail),
	}
}

// KindOf returns the kind of the outermost *Error in the chain, or "".
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return false
		}
		if se.Kind == kind {
			return true
		}
		err = se.Err
	}
	return false
}

// IsRetryable reports whether the operation may succeed on a later pass
// without any change to the remote data.
func IsRetryable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// IsSystemic reports whether err invalidates the whole pass rather than a
// single entity: an expired session, an open circuit or a cancelled context.
func IsSystemic(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrCircuitOpen) {
		return true
	}
	return Is(err, KindAuth)
}
