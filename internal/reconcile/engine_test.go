// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/synclog"
	"github.com/hulasync/hulasync/internal/syncerr"
)

const testLinkBase = "https://hula.example.com/projects/"

type pushCall struct {
	op       string
	remoteID string
	hulaID   string
	name     string
}

// fakePusher records pushes and answers with fresh UUIDs.
type fakePusher struct {
	calls   []pushCall
	fail    map[string]error // by remote id
	matches int
}

func (f *fakePusher) Insert(_ context.Context, e models.Entity) (PushResult, error) {
	f.calls = append(f.calls, pushCall{op: "insert", remoteID: e.RemoteID, name: e.Name})
	if err := f.fail[e.RemoteID]; err != nil {
		return PushResult{}, err
	}
	return PushResult{ID: uuid.NewString(), Matches: f.matches}, nil
}

func (f *fakePusher) Update(_ context.Context, p models.HulaProject, e models.Entity) (PushResult, error) {
	f.calls = append(f.calls, pushCall{op: "update", remoteID: e.RemoteID, hulaID: p.ID, name: e.Name})
	if err := f.fail[e.RemoteID]; err != nil {
		return PushResult{}, err
	}
	return PushResult{ID: p.ID, Matches: f.matches}, nil
}

func (f *fakePusher) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// failingLog rejects every insert with err.
type failingLog struct {
	*synclog.MemoryStore
	err error
}

func (f *failingLog) Insert(context.Context, *models.SyncLogRow) error {
	return f.err
}

func strPtr(s string) *string { return &s }

func newTestEngine(p Pusher, store synclog.Store) *Engine {
	return NewEngine(models.SystemHubspot, p, store, Options{LinkBase: testLinkBase, UpdatedBy: "user-1"})
}

func loadLog(t *testing.T, store synclog.Store) []models.SyncLogRow {
	t.Helper()
	rows, err := store.LoadAll(context.Background(), models.SystemHubspot)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	return rows
}

func TestReconcile_InsertNewEntity(t *testing.T) {
	store := synclog.NewMemoryStore()
	pusher := &fakePusher{matches: 3}
	engine := newTestEngine(pusher, store)

	res, err := engine.Reconcile(context.Background(), []models.Entity{{RemoteID: "42", Name: "Acme"}}, nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Inserted != 1 || pusher.count("insert") != 1 {
		t.Fatalf("inserted = %d, pushes = %d, want 1", res.Inserted, pusher.count("insert"))
	}

	rows := loadLog(t, store)
	if len(rows) != 1 || rows[0].RemoteID != "42" || rows[0].Name != "Acme" || rows[0].UpdatedBy != "user-1" {
		t.Fatalf("unexpected log rows: %+v", rows)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(res.Matches))
	}
	m := res.Matches[0]
	if m.RemoteID != "42" || m.Matches != 3 || m.Link != testLinkBase+rows[0].LocalID {
		t.Errorf("unexpected match: %+v", m)
	}
}

func TestReconcile_EveryNewEntityGetsOneRowAndOneMatch(t *testing.T) {
	store := synclog.NewMemoryStore()
	existing := uuid.NewString()
	if err := store.Insert(context.Background(), &models.SyncLogRow{System: models.SystemHubspot, LocalID: existing, RemoteID: "1", Name: "One"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, store)

	remote := []models.Entity{{RemoteID: "1", Name: "One"}, {RemoteID: "2", Name: "Two"}, {RemoteID: "3", Name: "Three"}}
	hula := []models.HulaProject{{ID: existing, Name: "One"}}
	res, err := engine.Reconcile(context.Background(), remote, hula, loadLog(t, store))
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	perRemote := map[string]int{}
	for _, r := range loadLog(t, store) {
		perRemote[r.RemoteID]++
	}
	matched := map[string]int{}
	for _, m := range res.Matches {
		matched[m.RemoteID]++
	}
	for _, id := range []string{"2", "3"} {
		if perRemote[id] != 1 || matched[id] != 1 {
			t.Errorf("remote %s: rows=%d matches=%d, want 1 each", id, perRemote[id], matched[id])
		}
	}
	if res.Unchanged != 1 || matched["1"] != 0 {
		t.Errorf("existing entity should be unchanged: %+v", res)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	store := synclog.NewMemoryStore()
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, store)
	remote := []models.Entity{{RemoteID: "7", Name: "Seven"}, {RemoteID: "8", Name: "Eight", Description: strPtr("d")}}

	if _, err := engine.Reconcile(context.Background(), remote, nil, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Hula now holds what was pushed.
	var hula []models.HulaProject
	byRemote := map[string]models.Entity{}
	for _, e := range remote {
		byRemote[e.RemoteID] = e
	}
	log := loadLog(t, store)
	for _, r := range log {
		e := byRemote[r.RemoteID]
		hula = append(hula, models.HulaProject{ID: r.LocalID, Name: e.Name, Description: e.Description})
	}

	pusher.calls = nil
	res, err := engine.Reconcile(context.Background(), remote, hula, log)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.Inserted != 0 || len(pusher.calls) != 0 {
		t.Errorf("second run pushed %d times, inserted %d", len(pusher.calls), res.Inserted)
	}
	if res.Unchanged != 2 {
		t.Errorf("unchanged = %d, want 2", res.Unchanged)
	}
}

func TestReconcile_UpdateSkippedWhenEqual(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		name    string
		project models.HulaProject
		entity  models.Entity
	}{
		{"both descriptions nil", models.HulaProject{ID: id, Name: "Acme"}, models.Entity{RemoteID: "42", Name: "Acme"}},
		{"nil equals empty", models.HulaProject{ID: id, Name: "Acme", Description: strPtr("")}, models.Entity{RemoteID: "42", Name: "Acme"}},
		{"same description", models.HulaProject{ID: id, Name: "Acme", Description: strPtr("x")}, models.Entity{RemoteID: "42", Name: "Acme", Description: strPtr("x")}},
		{"only needs differ", models.HulaProject{ID: id, Name: "Acme"}, models.Entity{RemoteID: "42", Name: "Acme", Needs: []models.Need{{Label: "Backend", Positions: 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pusher := &fakePusher{}
			engine := newTestEngine(pusher, synclog.NewMemoryStore())
			log := []models.SyncLogRow{{System: models.SystemHubspot, LocalID: id, RemoteID: "42", Name: "Acme"}}

			res, err := engine.Reconcile(context.Background(), []models.Entity{tt.entity}, []models.HulaProject{tt.project}, log)
			if err != nil {
				t.Fatalf("Reconcile failed: %v", err)
			}
			if len(pusher.calls) != 0 {
				t.Errorf("expected no push, got %+v", pusher.calls)
			}
			if res.Unchanged != 1 || len(res.Matches) != 0 {
				t.Errorf("unexpected result: %+v", res)
			}
		})
	}
}

func TestReconcile_RenameIssuesOneUpdate(t *testing.T) {
	id := uuid.NewString()
	pusher := &fakePusher{matches: 5}
	engine := newTestEngine(pusher, synclog.NewMemoryStore())

	log := []models.SyncLogRow{{System: models.SystemHubspot, LocalID: id, RemoteID: "42", Name: "Acme"}}
	hula := []models.HulaProject{{ID: id, Name: "Acme"}}
	remote := []models.Entity{{RemoteID: "42", Name: "Acme Corp"}}

	res, err := engine.Reconcile(context.Background(), remote, hula, log)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(pusher.calls) != 1 {
		t.Fatalf("expected exactly one push, got %+v", pusher.calls)
	}
	c := pusher.calls[0]
	if c.op != "update" || c.name != "Acme Corp" || c.hulaID != id {
		t.Errorf("unexpected push: %+v", c)
	}
	if res.Updated != 1 || len(res.Matches) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if m := res.Matches[0]; m.RemoteID != "42" || m.Matches != 5 || m.Link != testLinkBase+id {
		t.Errorf("unexpected match: %+v", m)
	}
}

func TestReconcile_DescriptionChangeTriggersUpdate(t *testing.T) {
	id := uuid.NewString()
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, synclog.NewMemoryStore())

	log := []models.SyncLogRow{{System: models.SystemHubspot, LocalID: id, RemoteID: "42"}}
	res, err := engine.Reconcile(context.Background(),
		[]models.Entity{{RemoteID: "42", Name: "Acme", Description: strPtr("new")}},
		[]models.HulaProject{{ID: id, Name: "Acme", Description: strPtr("old")}},
		log)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("updated = %d, want 1", res.Updated)
	}
}

func TestReconcile_OrphanedAndStaleRows(t *testing.T) {
	present := uuid.NewString()
	log := []models.SyncLogRow{
		{System: models.SystemHubspot, LocalID: uuid.NewString(), RemoteID: "1"}, // project deleted in Hula
		{System: models.SystemHubspot, LocalID: present, RemoteID: "2"},          // deal vanished
	}
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, synclog.NewMemoryStore())

	res, err := engine.Reconcile(context.Background(),
		[]models.Entity{{RemoteID: "1", Name: "Renamed"}},
		[]models.HulaProject{{ID: present, Name: "Two"}},
		log)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Orphaned != 1 || res.Stale != 1 {
		t.Errorf("orphaned = %d, stale = %d, want 1 each", res.Orphaned, res.Stale)
	}
	if len(pusher.calls) != 0 {
		t.Errorf("no pushes expected, got %+v", pusher.calls)
	}
}

func TestReconcile_DuplicateRemoteIDPushedOnce(t *testing.T) {
	store := synclog.NewMemoryStore()
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, store)

	remote := []models.Entity{{RemoteID: "42", Name: "Acme"}, {RemoteID: "42", Name: "Acme again"}}
	res, err := engine.Reconcile(context.Background(), remote, nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if pusher.count("insert") != 1 || res.Inserted != 1 {
		t.Errorf("inserts = %d, want 1", pusher.count("insert"))
	}
	if pusher.calls[0].name != "Acme" {
		t.Errorf("first occurrence should win, pushed %q", pusher.calls[0].name)
	}
	if len(loadLog(t, store)) != 1 {
		t.Error("expected one sync log row")
	}
}

func TestReconcile_PushFailureSkipsOnlyThatEntity(t *testing.T) {
	store := synclog.NewMemoryStore()
	pusher := &fakePusher{fail: map[string]error{
		"2": syncerr.Protocol("hula.create_project", errors.New("bad request")),
	}}
	engine := newTestEngine(pusher, store)

	remote := []models.Entity{{RemoteID: "1", Name: "A"}, {RemoteID: "2", Name: "B"}, {RemoteID: "3", Name: "C"}}
	res, err := engine.Reconcile(context.Background(), remote, nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Inserted != 2 || res.Failed != 1 {
		t.Errorf("inserted = %d failed = %d, want 2 and 1", res.Inserted, res.Failed)
	}
	for _, r := range loadLog(t, store) {
		if r.RemoteID == "2" {
			t.Error("failed entity must not be logged")
		}
	}
}

func TestReconcile_SystemicFailureAbortsPass(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", syncerr.Auth("hula.create_project", syncerr.ErrUnauthorized)},
		{"circuit open", syncerr.Transport("hula.create_project", syncerr.ErrCircuitOpen)},
		{"cancelled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := synclog.NewMemoryStore()
			pusher := &fakePusher{fail: map[string]error{"2": tt.err}}
			engine := newTestEngine(pusher, store)

			remote := []models.Entity{{RemoteID: "1", Name: "A"}, {RemoteID: "2", Name: "B"}, {RemoteID: "3", Name: "C"}}
			res, err := engine.Reconcile(context.Background(), remote, nil, nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if res.Inserted != 1 || len(res.Matches) != 1 {
				t.Errorf("partial result should keep the first insert: %+v", res)
			}
			if pusher.count("insert") != 2 {
				t.Errorf("entity after systemic failure was pushed")
			}
		})
	}
}

func TestReconcile_LogWriteFailureSkipsEntity(t *testing.T) {
	pusher := &fakePusher{}
	store := &failingLog{
		MemoryStore: synclog.NewMemoryStore(),
		err:         syncerr.Duplicate("synclog.insert", "hubspot_id=42"),
	}
	engine := newTestEngine(pusher, store)

	res, err := engine.Reconcile(context.Background(), []models.Entity{{RemoteID: "42", Name: "Acme"}}, nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Failed != 1 || res.Inserted != 0 || len(res.Matches) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestReconcile_MissingRemoteID(t *testing.T) {
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, synclog.NewMemoryStore())

	res, err := engine.Reconcile(context.Background(), []models.Entity{{Name: "No id"}}, nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Failed != 1 || len(pusher.calls) != 0 {
		t.Errorf("entity without id should be skipped: %+v", res)
	}
}

func TestReconcile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pusher := &fakePusher{}
	engine := newTestEngine(pusher, synclog.NewMemoryStore())

	_, err := engine.Reconcile(ctx, []models.Entity{{RemoteID: "1", Name: "A"}}, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(pusher.calls) != 0 {
		t.Error("no push expected after cancellation")
	}
}

func TestResult_Counts(t *testing.T) {
	r := Result{Inserted: 2, Updated: 1, Stale: 4}
	if r.Pushed() != 3 {
		t.Errorf("Pushed = %d, want 3", r.Pushed())
	}
	c := r.Counts()
	if c["inserted"] != 2 || c["stale"] != 4 || len(c) != 6 {
		t.Errorf("unexpected counts: %v", c)
	}
}
