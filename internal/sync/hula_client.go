// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
	"github.com/hulasync/hulasync/internal/validation"
)

// hulaSessionCookie is the name of the Hula session cookie.
const hulaSessionCookie = "auth"

// ErrNoSession is returned when a Hula call is made without a session.
var ErrNoSession = errors.New("no hula session")

// ErrCreatedWithoutID is returned when Hula accepts a project but does not
// answer with its id. The project may exist without a sync log row.
var ErrCreatedWithoutID = errors.New("hula accepted project without returning an id")

// HulaAPI defines the Hula operations used by the sync.
// HulaClient and HulaCircuitBreakerClient implement it.
type HulaAPI interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ListProjects(ctx context.Context) ([]models.HulaProject, error)
	CreateProject(ctx context.Context, in models.HulaProjectInput) (*models.HulaProject, error)
	UpdateProject(ctx context.Context, id string, in models.HulaProjectInput) (*models.HulaProject, error)
	ListProjectStructures(ctx context.Context, projectID string) ([]models.HulaProjectStructure, error)
	CreateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error)
	UpdateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error)
	ListSkills(ctx context.Context) ([]models.HulaSkill, error)
}

// Ensure HulaClient implements HulaAPI
var _ HulaAPI = (*HulaClient)(nil)

// HulaClient provides access to the Hula REST API. A session is opened with
// Login and held until Logout.
type HulaClient struct {
	baseURL     string
	credentials models.HulaCredentials
	httpClient  *http.Client
	recorder    CallRecorder

	mu      sync.RWMutex
	session *http.Cookie
}

// NewHulaClient creates a Hula client.
func NewHulaClient(cfg *config.HulaConfig, recorder CallRecorder) *HulaClient {
	return &HulaClient{
		baseURL:     strings.TrimSuffix(cfg.URL, "/"),
		credentials: models.HulaCredentials{Email: cfg.UserID, Password: cfg.Password},
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		recorder:    recorder,
	}
}

// Login opens a session with the configured credentials.
func (c *HulaClient) Login(ctx context.Context) error {
	const op = "hula.login"
	resp, err := doHTTP(ctx, c.httpClient, c.recorder, httpRequest{
		system: "hula",
		op:     op,
		method: http.MethodPost,
		url:    c.baseURL + "/api/auth",
		body:   c.credentials,
	})
	if err != nil {
		return err
	}

	session := sessionCookie(resp.cookies)
	if session == nil {
		return syncerr.Auth(op, fmt.Errorf("%w: no session cookie in response", syncerr.ErrUnauthorized))
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	logging.Debug().Str("user", logging.SanitizeEmail(c.credentials.Email)).Msg("Hula session opened")
	return nil
}

// sessionCookie returns the auth cookie, or the first cookie when Hula
// names it differently.
func sessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == hulaSessionCookie {
			return &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}
	if len(cookies) > 0 {
		return &http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value}
	}
	return nil
}

// Logout closes the session. The local session is dropped even when the
// request fails.
func (c *HulaClient) Logout(ctx context.Context) error {
	session := c.currentSession()
	if session == nil {
		return nil
	}
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	_, err := doHTTP(ctx, c.httpClient, c.recorder, httpRequest{
		system: "hula",
		op:     "hula.logout",
		method: http.MethodDelete,
		url:    c.baseURL + "/api/auth",
		cookie: session,
	})
	return err
}

// HasSession reports whether Login succeeded and Logout was not called.
func (c *HulaClient) HasSession() bool {
	return c.currentSession() != nil
}

func (c *HulaClient) currentSession() *http.Cookie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// call performs an authenticated request and decodes the JSON answer into
// out. A 204 leaves out untouched.
func (c *HulaClient) call(ctx context.Context, op, method, path string, body, out any) error {
	session := c.currentSession()
	if session == nil {
		return syncerr.Auth(op, fmt.Errorf("%w: %w", syncerr.ErrUnauthorized, ErrNoSession))
	}
	resp, err := doHTTP(ctx, c.httpClient, c.recorder, httpRequest{
		system: "hula",
		op:     op,
		method: method,
		url:    c.baseURL + path,
		body:   body,
		cookie: session,
	})
	if err != nil {
		return err
	}
	if resp.status == http.StatusNoContent || out == nil || len(resp.body) == 0 {
		return nil
	}
	return decodeBody(op, resp.body, out)
}

// ListProjects returns all Hula projects. A 204 means none.
func (c *HulaClient) ListProjects(ctx context.Context) ([]models.HulaProject, error) {
	const op = "hula.list_projects"
	var projects []models.HulaProject
	if err := c.call(ctx, op, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	for i := range projects {
		if err := validation.ValidateStruct(&projects[i]); err != nil {
			return nil, syncerr.Protocol(op, fmt.Errorf("project %d: %w", i, err))
		}
	}
	return projects, nil
}

// CreateProject creates a visible project.
func (c *HulaClient) CreateProject(ctx context.Context, in models.HulaProjectInput) (*models.HulaProject, error) {
	const op = "hula.create_project"
	var project models.HulaProject
	if err := c.call(ctx, op, http.MethodPost, "/api/projects", in, &project); err != nil {
		return nil, err
	}
	if project.ID == "" {
		logging.Warn().Str("name", in.Name).Msg("Hula answered project creation without an id, a project may have been created")
		return nil, syncerr.Protocol(op, ErrCreatedWithoutID)
	}
	if err := validation.ValidateStruct(&project); err != nil {
		return nil, syncerr.Protocol(op, err)
	}
	return &project, nil
}

// UpdateProject replaces a project's name and description. Hula may answer
// without a body; the returned project then carries only the id.
func (c *HulaClient) UpdateProject(ctx context.Context, id string, in models.HulaProjectInput) (*models.HulaProject, error) {
	const op = "hula.update_project"
	project := models.HulaProject{ID: id}
	if err := c.call(ctx, op, http.MethodPut, "/api/projects/"+url.PathEscape(id), in, &project); err != nil {
		return nil, err
	}
	if project.ID == "" {
		project.ID = id
	}
	return &project, nil
}

// ListProjectStructures returns the structures of one project.
func (c *HulaClient) ListProjectStructures(ctx context.Context, projectID string) ([]models.HulaProjectStructure, error) {
	const op = "hula.list_project_structures"
	var all []models.HulaProjectStructure
	path := "/api/projectstructures?" + url.Values{"project_id": {projectID}}.Encode()
	if err := c.call(ctx, op, http.MethodGet, path, nil, &all); err != nil {
		return nil, err
	}
	// Older Hula versions ignore the filter.
	out := all[:0]
	for _, s := range all {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

// CreateProjectStructure creates a staffing structure under a project.
func (c *HulaClient) CreateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	const op = "hula.create_project_structure"
	if err := validation.ValidateStruct(&s); err != nil {
		return nil, syncerr.Protocol(op, err)
	}
	s.ID = ""
	out := s
	if err := c.call(ctx, op, http.MethodPost, "/api/projectstructures", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProjectStructure replaces an existing structure.
func (c *HulaClient) UpdateProjectStructure(ctx context.Context, s models.HulaProjectStructure) (*models.HulaProjectStructure, error) {
	const op = "hula.update_project_structure"
	if s.ID == "" {
		return nil, syncerr.Protocol(op, errors.New("structure id is required"))
	}
	if err := validation.ValidateStruct(&s); err != nil {
		return nil, syncerr.Protocol(op, err)
	}
	out := s
	if err := c.call(ctx, op, http.MethodPut, "/api/projectstructures/"+url.PathEscape(s.ID), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSkills returns Hula's skill taxonomy.
func (c *HulaClient) ListSkills(ctx context.Context) ([]models.HulaSkill, error) {
	const op = "hula.list_skills"
	var skills []models.HulaSkill
	if err := c.call(ctx, op, http.MethodGet, "/api/skills", nil, &skills); err != nil {
		return nil, err
	}
	out := skills[:0]
	for _, s := range skills {
		if err := validation.ValidateStruct(&s); err != nil {
			logging.Debug().Err(err).Str("id", s.ID).Msg("Skipping skill without label")
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
