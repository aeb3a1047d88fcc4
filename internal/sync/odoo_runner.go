// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hulasync/hulasync/internal/config"
)

// ScriptResult is the captured output of a script run.
type ScriptResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ScriptRunner runs an Odoo side-process script.
type ScriptRunner interface {
	Run(ctx context.Context, script string, args ...string) (ScriptResult, error)
}

// ScriptExitError reports a script that ran but exited non-zero.
type ScriptExitError struct {
	Script   string
	ExitCode int
	Stderr   string
}

func (e *ScriptExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("script %s exited with code %d", e.Script, e.ExitCode)
	}
	return fmt.Sprintf("script %s exited with code %d: %s", e.Script, e.ExitCode, msg)
}

// ErrScriptTimeout is returned when a script exceeds its time budget.
var ErrScriptTimeout = errors.New("script timed out")

// Ensure ExecRunner implements ScriptRunner
var _ ScriptRunner = (*ExecRunner)(nil)

// ExecRunner runs scripts as "<python> <dir>/<script> args..." processes.
type ExecRunner struct {
	python  string
	dir     string
	timeout time.Duration
}

// NewExecRunner creates a runner from the Odoo configuration.
func NewExecRunner(cfg *config.OdooConfig) *ExecRunner {
	return &ExecRunner{python: cfg.Python, dir: cfg.ScriptDir, timeout: cfg.ScriptTimeout}
}

// Run executes script and captures its output. A non-zero exit returns the
// result together with a *ScriptExitError.
func (r *ExecRunner) Run(ctx context.Context, script string, args ...string) (ScriptResult, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmdArgs := append([]string{filepath.Join(r.dir, script)}, args...)
	cmd := exec.CommandContext(runCtx, r.python, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ScriptResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %s after %s", ErrScriptTimeout, script, r.timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ScriptExitError{Script: script, ExitCode: res.ExitCode, Stderr: stderr.String()}
	}
	res.ExitCode = -1
	return res, fmt.Errorf("failed to start %s: %w", script, err)
}
