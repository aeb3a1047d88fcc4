// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"fmt"
	"strings"
	stdsync "sync"

	"github.com/google/uuid"

	"github.com/hulasync/hulasync/internal/audit"
	"github.com/hulasync/hulasync/internal/models"
)

// fakeHula is an in-memory HulaAPI.
type fakeHula struct {
	mu stdsync.Mutex

	projects   map[string]models.HulaProject
	structures map[string]models.HulaProjectStructure
	skills     []models.HulaSkill

	loginErr  error
	logoutErr error
	listErr   error
	createErr error
	skillsErr error
	matches   int
	calls     []string
	loggedIn  bool
	logins    int
	logouts   int
}

func newFakeHula() *fakeHula {
	return &fakeHula{
		projects:   make(map[string]models.HulaProject),
		structures: make(map[string]models.HulaProjectStructure),
	}
}

func (f *fakeHula) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeHula) Login(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login")
	f.logins++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = true
	return nil
}

func (f *fakeHula) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("logout")
	f.logouts++
	f.loggedIn = false
	return f.logoutErr
}

func (f *fakeHula) ListProjects(context.Context) ([]models.HulaProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list_projects")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.HulaProject, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeHula) CreateProject(_ context.Context, in models.HulaProjectInput) (*models.HulaProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_project:" + in.Name)
	if f.createErr != nil {
		return nil, f.createErr
	}
	desc := in.Description
	p := models.HulaProject{ID: uuid.NewString(), Name: in.Name, Description: &desc, Matches: f.matches}
	f.projects[p.ID] = p
	return &p, nil
}

func (f *fakeHula) UpdateProject(_ context.Context, id string, in models.HulaProjectInput) (*models.HulaProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update_project:" + in.Name)
	if _, ok := f.projects[id]; !ok {
		return nil, fmt.Errorf("project %s not found", id)
	}
	desc := in.Description
	p := models.HulaProject{ID: id, Name: in.Name, Description: &desc, Matches: f.matches}
	f.projects[id] = p
	return &p, nil
}

func (f *fakeHula) ListProjectStructures(_ context.Context, projectID string) ([]models.HulaProjectStructure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list_structures")
	var out []models.HulaProjectStructure
	for _, s := range f.structures {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeHula) CreateProjectStructure(_ context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_structure:" + s.Name)
	s.ID = uuid.NewString()
	s.Matches = len(s.Skills)
	f.structures[s.ID] = s
	return &s, nil
}

func (f *fakeHula) UpdateProjectStructure(_ context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update_structure:" + s.Name)
	s.Matches = len(s.Skills)
	f.structures[s.ID] = s
	return &s, nil
}

func (f *fakeHula) ListSkills(context.Context) ([]models.HulaSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list_skills")
	return f.skills, f.skillsErr
}

func (f *fakeHula) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// fakeRunner answers script runs from a table keyed by script name.
type fakeRunner struct {
	mu      stdsync.Mutex
	results map[string]ScriptResult
	errs    map[string]error
	runs    []scriptRun
}

type scriptRun struct {
	script string
	args   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]ScriptResult{}, errs: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, script string, args ...string) (ScriptResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, scriptRun{script: script, args: append([]string(nil), args...)})
	return f.results[script], f.errs[script]
}

func (f *fakeRunner) runsOf(script string) []scriptRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scriptRun
	for _, r := range f.runs {
		if r.script == script {
			out = append(out, r)
		}
	}
	return out
}

// fakeSource is a static EntitySource.
type fakeSource struct {
	entities []models.Entity
	err      error
	calls    int
}

func (f *fakeSource) FetchEntities(context.Context) ([]models.Entity, error) {
	f.calls++
	return f.entities, f.err
}

// fakeModule records runs for scheduler tests.
type fakeModule struct {
	name  string
	err   error
	runs  int
	order *[]string
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) State() State { return StateIdle }

func (m *fakeModule) Run(context.Context) error {
	m.runs++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	return m.err
}

func newTestRecorder() (*audit.Logger, *audit.MemoryStore) {
	store := audit.NewMemoryStore()
	return audit.NewLogger(store, "sync@example.com"), store
}
