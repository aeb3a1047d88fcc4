// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
	"github.com/hulasync/hulasync/internal/models"
	"github.com/hulasync/hulasync/internal/syncerr"
	"github.com/hulasync/hulasync/internal/validation"
)

// Deal properties requested from Hubspot.
const (
	hubspotPropName        = "dealname"
	hubspotPropDescription = "description"
	hubspotPropStage       = "dealstage"
)

// maxHubspotPages bounds paging in case Hubspot keeps reporting hasMore.
const maxHubspotPages = 10000

// EntitySource fetches the current entities of a remote system.
type EntitySource interface {
	FetchEntities(ctx context.Context) ([]models.Entity, error)
}

// Ensure HubspotClient implements EntitySource
var _ EntitySource = (*HubspotClient)(nil)

// HubspotClient reads deals from the Hubspot deals v1 API.
type HubspotClient struct {
	baseURL    string
	apiKey     string
	dealStage  string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   CallRecorder
}

// NewHubspotClient creates a Hubspot client. Requests are spaced to stay
// under cfg.RateLimit requests per second.
func NewHubspotClient(cfg *config.HubspotConfig, recorder CallRecorder) *HubspotClient {
	return &HubspotClient{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		dealStage:  cfg.DealStage,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		recorder:   recorder,
	}
}

// FetchDeals returns every deal, following hasMore/offset paging.
func (c *HubspotClient) FetchDeals(ctx context.Context) ([]models.HubspotDeal, error) {
	const op = "hubspot.fetch_deals"
	var deals []models.HubspotDeal
	var offset int64

	for page := 0; page < maxHubspotPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := doHTTP(ctx, c.httpClient, c.recorder, httpRequest{
			system: "hubspot",
			op:     op,
			method: http.MethodGet,
			url:    c.pageURL(offset),
		})
		if err != nil {
			return nil, err
		}

		var body models.HubspotDealsPage
		if err := decodeBody(op, resp.body, &body); err != nil {
			return nil, err
		}
		if err := validation.ValidateStruct(&body); err != nil {
			return nil, syncerr.Protocol(op, err)
		}
		deals = append(deals, body.Deals...)

		if !body.HasMore {
			logging.Debug().Int("deals", len(deals)).Int("pages", page+1).Msg("Fetched Hubspot deals")
			return deals, nil
		}
		if body.Offset <= offset {
			return nil, syncerr.Protocol(op, fmt.Errorf("paging offset did not advance (%d)", body.Offset))
		}
		offset = body.Offset
	}
	return nil, syncerr.Protocol(op, fmt.Errorf("more than %d pages", maxHubspotPages))
}

func (c *HubspotClient) pageURL(offset int64) string {
	q := url.Values{}
	q.Set("hapikey", c.apiKey)
	q.Add("properties", hubspotPropName)
	q.Add("properties", hubspotPropDescription)
	q.Add("properties", hubspotPropStage)
	q.Set("limit", strconv.Itoa(c.pageSize))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	return c.baseURL + "/deals/v1/deal/paged?" + q.Encode()
}

// FetchEntities returns the deals in the configured stage as entities.
// An empty stage keeps every deal.
func (c *HubspotClient) FetchEntities(ctx context.Context) ([]models.Entity, error) {
	deals, err := c.FetchDeals(ctx)
	if err != nil {
		return nil, err
	}
	entities := make([]models.Entity, 0, len(deals))
	for _, d := range deals {
		stage := d.Property(hubspotPropStage)
		if c.dealStage != "" && stage != c.dealStage {
			continue
		}
		entities = append(entities, dealToEntity(d))
	}
	logging.Info().Int("deals", len(deals)).Int("in_stage", len(entities)).Str("stage", c.dealStage).Msg("Hubspot deals filtered")
	return entities, nil
}

func dealToEntity(d models.HubspotDeal) models.Entity {
	e := models.Entity{
		RemoteID: strconv.FormatInt(d.DealID, 10),
		Name:     d.Property(hubspotPropName),
		Stage:    d.Property(hubspotPropStage),
	}
	if p, ok := d.Properties[hubspotPropDescription]; ok {
		desc := p.Value
		e.Description = &desc
	}
	return e
}
