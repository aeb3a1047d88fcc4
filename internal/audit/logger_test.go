// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
)

type failingStore struct {
	MemoryStore
}

func (f *failingStore) Save(context.Context, *models.CallLogRow) error {
	return errors.New("disk full")
}

func newTestLogger(store Store) *Logger {
	l := NewLogger(store, "user-1")
	l.now = func() time.Time { return baseTime }
	return l
}

func TestLogger_RecordScriptRedactsPassword(t *testing.T) {
	store := NewMemoryStore()
	l := newTestLogger(store)

	l.RecordScript(context.Background(), ScriptCall{
		Script:   "odoo_get.py",
		Args:     []string{"http://odoo", "prod", "admin", "s3cret", "15"},
		ExitCode: 0,
		Success:  true,
		Output:   "[]",
	})

	rows, _ := store.Query(context.Background(), Filter{Kind: models.CallScript})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Param(3) != logging.Redacted {
		t.Errorf("password not redacted: %q", r.Param(3))
	}
	if r.Param(4) != "15" || r.Param(0) != "http://odoo" {
		t.Errorf("unexpected params: %v", r.Params)
	}
	if r.UpdatedBy != "user-1" || !r.Timestamp.Equal(baseTime) || !r.Success {
		t.Errorf("unexpected row: %+v", r)
	}
}

func TestLogger_RecordScriptCapsParams(t *testing.T) {
	store := NewMemoryStore()
	newTestLogger(store).RecordScript(context.Background(), ScriptCall{
		Script: "x.py",
		Args:   []string{"1", "2", "3", "4", "5", "6", "7", "8"},
	})
	rows, _ := store.Query(context.Background(), Filter{Kind: models.CallScript})
	if len(rows[0].Params) != models.MaxCallParams {
		t.Errorf("params = %d, want %d", len(rows[0].Params), models.MaxCallParams)
	}
}

func TestLogger_RecordScriptUsesStartTime(t *testing.T) {
	store := NewMemoryStore()
	started := baseTime.Add(-3 * time.Minute)
	newTestLogger(store).RecordScript(context.Background(), ScriptCall{
		Script:  "odoo_get.py",
		Success: true,
		Started: started,
	})
	rows, _ := store.Query(context.Background(), Filter{Kind: models.CallScript})
	if len(rows) != 1 || !rows[0].Timestamp.Equal(started) {
		t.Errorf("row should be stamped with the start time: %+v", rows)
	}
}

func TestLogger_RecordHTTP(t *testing.T) {
	store := NewMemoryStore()
	l := newTestLogger(store)

	l.RecordHTTP(context.Background(), HTTPCall{
		Method:   "POST",
		URL:      "https://api.hubapi.com/deals/v1/deal/paged?hapikey=abcdef0123456789&limit=250",
		Payload:  []byte(`{"email":"sync@example.com","password":"hunter2"}`),
		Status:   200,
		Success:  true,
		Response: "ok",
	})

	rows, _ := store.Query(context.Background(), Filter{Kind: models.CallHTTP})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if strings.Contains(r.Target, "abcdef0123456789") {
		t.Errorf("api key leaked into target: %s", r.Target)
	}
	if !strings.Contains(r.Target, "limit=250") {
		t.Errorf("non-secret query lost: %s", r.Target)
	}
	if strings.Contains(r.Param(0), "hunter2") {
		t.Errorf("password leaked into payload: %s", r.Param(0))
	}
	if !strings.Contains(r.Param(0), "sync@example.com") {
		t.Errorf("payload lost non-secret fields: %s", r.Param(0))
	}
	if r.Verb != "POST" || r.Status != 200 {
		t.Errorf("unexpected row: %+v", r)
	}
}

func TestLogger_SaveFailureDoesNotPanic(t *testing.T) {
	l := newTestLogger(&failingStore{})
	l.RecordHTTP(context.Background(), HTTPCall{Method: "GET", URL: "http://hula/api/projects"})
}

func TestRedactPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		leak    string
		want    string
	}{
		{"non json", "plain text", "", "plain text"},
		{"array", `[{"label":"Go"}]`, "", `[{"label":"Go"}]`},
		{"no secrets", `{"name":"Acme"}`, "", `{"name":"Acme"}`},
		{"password", `{"password":"hunter2"}`, "hunter2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactPayload([]byte(tt.payload))
			if tt.want != "" && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.leak != "" && strings.Contains(got, tt.leak) {
				t.Errorf("secret leaked: %q", got)
			}
		})
	}
}
