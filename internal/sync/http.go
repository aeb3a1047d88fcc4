// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/hulasync/hulasync/internal/audit"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/metrics"
	"github.com/hulasync/hulasync/internal/syncerr"
)

// maxResponseBodySize limits how much of a response body is read.
const maxResponseBodySize = 16 * 1024 * 1024

// maxErrorBodySize limits how much of a body ends up in an error message.
const maxErrorBodySize = 512

// CallRecorder receives an audit record for every outbound call.
// audit.Logger implements it.
type CallRecorder interface {
	RecordHTTP(ctx context.Context, call audit.HTTPCall)
	RecordScript(ctx context.Context, call audit.ScriptCall)
}

type callRefsKey struct{}

type callRefs struct {
	localID  string
	remoteID string
}

// WithCallRefs attaches the Hula project id and remote entity id a call
// concerns, so the call log row can be correlated.
func WithCallRefs(ctx context.Context, localID, remoteID string) context.Context {
	return context.WithValue(ctx, callRefsKey{}, callRefs{localID: localID, remoteID: remoteID})
}

func refsFrom(ctx context.Context) callRefs {
	refs, _ := ctx.Value(callRefsKey{}).(callRefs)
	return refs
}

// httpRequest describes one JSON request.
type httpRequest struct {
	system string // metric label: hula, hubspot
	op     string // operation name used in errors and metrics
	method string
	url    string
	body   any
	cookie *http.Cookie
}

// httpResponse is a fully read response.
type httpResponse struct {
	status  int
	header  http.Header
	cookies []*http.Cookie
	body    []byte
}

// doHTTP sends req, reads the body, records the call and classifies the
// outcome. 401/403 become auth errors, other 4xx protocol errors, 5xx and
// network failures transport errors.
func doHTTP(ctx context.Context, client *http.Client, rec CallRecorder, req httpRequest) (*httpResponse, error) {
	var payload []byte
	var bodyReader io.Reader = http.NoBody
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return nil, syncerr.Protocol(req.op, fmt.Errorf("failed to encode request: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bodyReader)
	if err != nil {
		return nil, syncerr.Config(req.op, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.cookie != nil {
		httpReq.AddCookie(req.cookie)
	}

	refs := refsFrom(ctx)
	call := audit.HTTPCall{
		Method:   req.method,
		URL:      req.url,
		Payload:  payload,
		LocalID:  refs.localID,
		RemoteID: refs.remoteID,
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	metrics.RecordRemoteRequest(req.system, req.op, time.Since(start))
	if err != nil {
		call.Response = err.Error()
		rec.RecordHTTP(ctx, call)
		logging.Warn().Err(err).Str("op", req.op).Str("url", logging.SanitizeURL(req.url)).Msg("Request failed")
		return nil, syncerr.Transport(req.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	call.Status = resp.StatusCode
	if err != nil {
		call.Response = err.Error()
		rec.RecordHTTP(ctx, call)
		return nil, syncerr.Transport(req.op, fmt.Errorf("failed to read response: %w", err))
	}
	call.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	call.Response = string(body)
	rec.RecordHTTP(ctx, call)

	out := &httpResponse{
		status:  resp.StatusCode,
		header:  resp.Header,
		cookies: resp.Cookies(),
		body:    body,
	}

	switch {
	case call.Success:
		return out, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return out, syncerr.Auth(req.op, fmt.Errorf("%w: status %d", syncerr.ErrUnauthorized, resp.StatusCode))
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return out, syncerr.Transport(req.op, fmt.Errorf("status %d: %s", resp.StatusCode, errorBody(body)))
	default:
		return out, syncerr.Protocol(req.op, fmt.Errorf("status %d: %s", resp.StatusCode, errorBody(body)))
	}
}

// decodeBody unmarshals a JSON body into out.
func decodeBody(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return syncerr.Protocol(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func errorBody(body []byte) string {
	return logging.Truncate(string(bytes.TrimSpace(body)), maxErrorBodySize)
}
