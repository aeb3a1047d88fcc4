// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordPass(t *testing.T) {
	before := testutil.ToFloat64(PassesTotal.WithLabelValues("fatal"))
	RecordPass(2*time.Second, true)
	if got := testutil.ToFloat64(PassesTotal.WithLabelValues("fatal")); got != before+1 {
		t.Errorf("fatal passes = %v, want %v", got, before+1)
	}
	if testutil.ToFloat64(LastPassTimestamp) == 0 {
		t.Error("last pass timestamp not set")
	}
}

func TestRecordModuleRun(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"error", errors.New("fetch failed"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ModuleRuns.WithLabelValues("hubspot", tt.result)
			before := testutil.ToFloat64(c)
			RecordModuleRun("hubspot", tt.err)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("module runs = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordPush(t *testing.T) {
	ok := PushesTotal.WithLabelValues("odoo", "insert", "success")
	failed := PushesTotal.WithLabelValues("odoo", "insert", "failure")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordPush("odoo", "insert", nil)
	RecordPush("odoo", "insert", errors.New("boom"))
	RecordPush("odoo", "insert", errors.New("boom"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("successful pushes delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 2 {
		t.Errorf("failed pushes delta = %v, want 2", got)
	}
}

func TestRecordReconcile(t *testing.T) {
	RecordReconcile("hubspot", map[string]int{"inserted": 3, "stale": 1})
	if got := testutil.ToFloat64(ReconcileEntities.WithLabelValues("hubspot", "inserted")); got != 3 {
		t.Errorf("inserted = %v, want 3", got)
	}
	RecordReconcile("hubspot", map[string]int{"inserted": 0})
	if got := testutil.ToFloat64(ReconcileEntities.WithLabelValues("hubspot", "inserted")); got != 0 {
		t.Errorf("inserted after reset = %v, want 0", got)
	}
}

func TestRecordRemoteRequest(t *testing.T) {
	RecordRemoteRequest("hula", "list_projects", 150*time.Millisecond)

	m := &dto.Metric{}
	obs, err := RemoteRequestDuration.GetMetricWithLabelValues("hula", "list_projects")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if err := obs.(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Error("expected at least one observation")
	}
}

func TestRecordCallLogWriteAndScriptRun(t *testing.T) {
	w := CallLogWrites.WithLabelValues("script", "failure")
	before := testutil.ToFloat64(w)
	RecordCallLogWrite("script", false)
	if got := testutil.ToFloat64(w); got != before+1 {
		t.Errorf("call log failures = %v, want %v", got, before+1)
	}

	s := ScriptRuns.WithLabelValues("odoo_get.py", "exit_error")
	before = testutil.ToFloat64(s)
	RecordScriptRun("odoo_get.py", "exit_error")
	if got := testutil.ToFloat64(s); got != before+1 {
		t.Errorf("script runs = %v, want %v", got, before+1)
	}
}
