// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/models"
)

// maxResponseLen caps the stored response text.
const maxResponseLen = 64 * 1024

// scriptPasswordArg is the position of the password in every Odoo script
// argument vector (url, db, username, password, ...).
const scriptPasswordArg = 3

// Logger records outbound calls. A failed write is logged and counted but
// never fails the call it describes.
type Logger struct {
	store     Store
	updatedBy string
	now       func() time.Time
}

// NewLogger creates a call logger. updatedBy identifies the syncing user.
func NewLogger(store Store, updatedBy string) *Logger {
	return &Logger{store: store, updatedBy: updatedBy, now: time.Now}
}

// ScriptCall describes one run of an Odoo script.
type ScriptCall struct {
	Script   string
	Args     []string // url, db, username, password, extra...
	ExitCode int
	Success  bool
	Output   string // stdout on success, stderr or error text otherwise
	Started  time.Time
}

// RecordScript appends a script run to odoo_call_log. The password argument
// is redacted. The row is stamped with Started when set.
func (l *Logger) RecordScript(ctx context.Context, call ScriptCall) {
	params := logging.SanitizeArgs(call.Args, scriptPasswordArg)
	if len(params) > models.MaxCallParams {
		params = params[:models.MaxCallParams]
	}
	ts := call.Started
	if ts.IsZero() {
		ts = l.now()
	}
	l.save(ctx, &models.CallLogRow{
		Kind:      models.CallScript,
		Target:    call.Script,
		Params:    params,
		Status:    call.ExitCode,
		Success:   call.Success,
		Response:  logging.Truncate(call.Output, maxResponseLen),
		UpdatedBy: l.updatedBy,
		Timestamp: ts.UTC(),
	})
}

// HTTPCall describes one HTTP request to Hula or Hubspot.
type HTTPCall struct {
	Method   string
	URL      string
	Payload  []byte
	LocalID  string
	RemoteID string
	Status   int
	Success  bool
	Response string
}

// RecordHTTP appends a request to hula_call_log. Secrets in the URL query
// and in top-level JSON payload fields are redacted.
func (l *Logger) RecordHTTP(ctx context.Context, call HTTPCall) {
	var params []string
	if len(call.Payload) > 0 {
		params = []string{redactPayload(call.Payload)}
	}
	l.save(ctx, &models.CallLogRow{
		Kind:      models.CallHTTP,
		Target:    logging.SanitizeURL(call.URL),
		Verb:      call.Method,
		Params:    params,
		LocalID:   call.LocalID,
		RemoteID:  call.RemoteID,
		Status:    call.Status,
		Success:   call.Success,
		Response:  logging.Truncate(call.Response, maxResponseLen),
		UpdatedBy: l.updatedBy,
		Timestamp: l.now().UTC(),
	})
}

func (l *Logger) save(ctx context.Context, row *models.CallLogRow) {
	// The row is written even when the call was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := l.store.Save(ctx, row); err != nil {
		metrics.RecordCallLogWrite(string(row.Kind), false)
		logging.Error().Err(err).Str("kind", string(row.Kind)).Str("target", row.Target).Msg("Failed to write call log")
		return
	}
	metrics.RecordCallLogWrite(string(row.Kind), true)
}

// redactPayload masks sensitive top-level fields of a JSON object. Other
// payloads are stored unchanged.
func redactPayload(payload []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return string(payload)
	}
	changed := false
	for k := range obj {
		if logging.IsSensitiveKey(k) {
			obj[k] = json.RawMessage(`"` + logging.Redacted + `"`)
			changed = true
		}
	}
	if !changed {
		return string(payload)
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return logging.Redacted
	}
	return string(out)
}
