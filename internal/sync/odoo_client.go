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
	"time"

	"github.com/goccy/go-json"

	"github.com/hulasync/hulasync/internal/audit"
	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
	"github.com/hulasync/hulasync/internal/validation"
)

// Odoo scripts.
const (
	ScriptFetchProjects     = audit.PrimaryFetchScript
	ScriptPutMatches        = "odoo_put.py"
	ScriptPutSkills         = "odoo_put_skills.py"
	ScriptFillProjectSkills = "odoo_fill_project_skills.py"
)

// OdooClient drives the Odoo side-process scripts. Every script receives
// url, db, username and password first, then its own arguments, and
// answers with JSON on stdout.
type OdooClient struct {
	runner   ScriptRunner
	recorder CallRecorder
	baseArgs []string
}

// NewOdooClient creates an Odoo client.
func NewOdooClient(cfg *config.OdooConfig, runner ScriptRunner, recorder CallRecorder) *OdooClient {
	return &OdooClient{
		runner:   runner,
		recorder: recorder,
		baseArgs: []string{cfg.URL, cfg.DB, cfg.Username, cfg.Password},
	}
}

// exec runs a script and describes the run for the call log without
// recording it. Exit failures wrap *ScriptExitError in a transport error.
func (c *OdooClient) exec(ctx context.Context, script string, extra ...string) ([]byte, audit.ScriptCall, error) {
	op := "odoo." + script
	args := append(append([]string(nil), c.baseArgs...), extra...)

	start := time.Now()
	res, err := c.runner.Run(ctx, script, args...)
	metrics.RecordRemoteRequest("odoo", script, time.Since(start))

	call := audit.ScriptCall{
		Script:   script,
		Args:     args,
		ExitCode: res.ExitCode,
		Success:  err == nil,
		Output:   string(res.Stdout),
		Started:  start,
	}
	if err != nil {
		call.Output = string(res.Stderr)
		if call.Output == "" {
			call.Output = err.Error()
		}
	}

	var exitErr *ScriptExitError
	switch {
	case err == nil:
		metrics.RecordScriptRun(script, "success")
		return res.Stdout, call, nil
	case errors.As(err, &exitErr):
		metrics.RecordScriptRun(script, "exit_error")
		logging.Error().Int("exit_code", exitErr.ExitCode).Str("script", script).Str("stderr", logging.Truncate(exitErr.Stderr, maxErrorBodySize)).Msg("Odoo script failed")
	default:
		metrics.RecordScriptRun(script, "error")
		logging.Error().Err(err).Str("script", script).Msg("Odoo script failed")
	}
	return nil, call, syncerr.Transport(op, err)
}

// run executes a script, records it and returns stdout.
func (c *OdooClient) run(ctx context.Context, script string, extra ...string) ([]byte, error) {
	out, call, err := c.exec(ctx, script, extra...)
	c.recorder.RecordScript(ctx, call)
	return out, err
}

// ProjectFetch is the result of odoo_get.py. Its call log row is written by
// Finish, once the run that consumed the projects knows its outcome.
type ProjectFetch struct {
	Entities []models.Entity

	recorder CallRecorder
	call     audit.ScriptCall
	done     bool
}

// Finish records the fetch. A non-nil runErr marks the row failed so the
// next incremental window starts from an earlier successful fetch. Only the
// first call has an effect.
func (f *ProjectFetch) Finish(ctx context.Context, runErr error) {
	if f == nil || f.done {
		return
	}
	f.done = true
	if runErr != nil {
		f.call.Success = false
		f.call.Output = runErr.Error()
	}
	f.recorder.RecordScript(ctx, f.call)
}

// FetchProjects runs odoo_get.py. With a valid lag only projects changed in
// the last lag minutes are returned. Projects failing validation are
// skipped. Script and decode failures are recorded immediately; otherwise
// the caller must call Finish on the result.
func (c *OdooClient) FetchProjects(ctx context.Context, lag audit.Lag) (*ProjectFetch, error) {
	op := "odoo." + ScriptFetchProjects
	var extra []string
	if lag.Valid {
		extra = append(extra, lag.String())
	}
	out, call, err := c.exec(ctx, ScriptFetchProjects, extra...)
	if err != nil {
		c.recorder.RecordScript(ctx, call)
		return nil, err
	}
	fetch := &ProjectFetch{recorder: c.recorder, call: call}

	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return fetch, nil
	}
	var projects []models.OdooProject
	if err := json.Unmarshal(out, &projects); err != nil {
		err = syncerr.Protocol(op, fmt.Errorf("failed to decode projects: %w", err))
		fetch.Finish(ctx, err)
		return nil, err
	}

	fetch.Entities = make([]models.Entity, 0, len(projects))
	for i := range projects {
		if err := validation.ValidateStruct(&projects[i]); err != nil {
			logging.Warn().Err(err).Int("index", i).Msg("Skipping invalid Odoo project")
			continue
		}
		fetch.Entities = append(fetch.Entities, projects[i].Entity())
	}
	return fetch, nil
}

// PutMatches writes match counts and Hula links back to Odoo projects.
func (c *OdooClient) PutMatches(ctx context.Context, matches []models.ProjectMatch) error {
	if len(matches) == 0 {
		return nil
	}
	payload, err := json.Marshal(matches)
	if err != nil {
		return syncerr.Protocol("odoo."+ScriptPutMatches, err)
	}
	_, err = c.run(ctx, ScriptPutMatches, string(payload))
	return err
}

// PutSkills pushes skill labels to Odoo and returns the labels Odoo did not
// know before.
func (c *OdooClient) PutSkills(ctx context.Context, labels []string) ([]string, error) {
	op := "odoo." + ScriptPutSkills
	input := make([]models.OdooSkillLabel, 0, len(labels))
	for _, l := range labels {
		input = append(input, models.OdooSkillLabel{Label: l})
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, syncerr.Protocol(op, err)
	}
	out, err := c.run(ctx, ScriptPutSkills, string(payload))
	if err != nil {
		return nil, err
	}
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	var created []string
	if err := json.Unmarshal(out, &created); err != nil {
		return nil, syncerr.Protocol(op, fmt.Errorf("failed to decode created skills: %w", err))
	}
	return created, nil
}

// FillProjectSkills regenerates the project to skill associations in Odoo.
func (c *OdooClient) FillProjectSkills(ctx context.Context) error {
	_, err := c.run(ctx, ScriptFillProjectSkills)
	return err
}
