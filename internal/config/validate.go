// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/hulasync/hulasync/internal/syncerr"
	"github.com/hulasync/hulasync/internal/validation"
)

// Validate checks the static rules on every section, then the variables
// each enabled module needs. All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if err := validation.ValidateStruct(c); err != nil {
		var verr *validation.Errors
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				problems = append(problems, f.Message)
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	validators := []func() []string{
		c.validateHula,
		c.validateHubspot,
		c.validateOdoo,
	}
	for _, v := range validators {
		problems = append(problems, v()...)
	}

	if len(problems) == 0 {
		return nil
	}
	return syncerr.Config("config.validate", fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; ")))
}

func (c *Config) validateHula() []string {
	if c.Hula.URL == "" {
		return nil
	}
	if err := validateHTTPURL(c.Hula.URL, "HULA_URL"); err != nil {
		return []string{err.Error()}
	}
	return nil
}

func (c *Config) validateHubspot() []string {
	if !c.Sync.Enabled(ModuleHubspot) {
		return nil
	}
	return missing(map[string]string{
		"HUBSPOT_API_KEY": c.Hubspot.APIKey,
	})
}

func (c *Config) validateOdoo() []string {
	if !c.Sync.Enabled(ModuleOdoo) {
		return nil
	}
	problems := missing(map[string]string{
		"ODOO_URL":      c.Odoo.URL,
		"ODOO_DB":       c.Odoo.DB,
		"ODOO_USERNAME": c.Odoo.Username,
		"ODOO_PASSWORD": c.Odoo.Password,
	})
	if c.Odoo.URL != "" {
		if err := validateHTTPURL(c.Odoo.URL, "ODOO_URL"); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return problems
}

// missing returns "X is required" for each empty value, sorted by name.
func missing(values map[string]string) []string {
	var names []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + " is required"
	}
	return out
}

// validateHTTPURL requires an http(s) base URL with a host and no query.
// A path is allowed since Hula and Odoo may sit behind a prefix.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, u.RawQuery)
	}
	return nil
}
