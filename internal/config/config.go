// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package config loads the Hula Sync configuration.
//
// Values are layered with koanf: struct defaults, then an optional YAML file
// (CONFIG_PATH or ./config.yaml), then environment variables. Only the
// environment variables listed in envMappings are read.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Module names accepted in MODULES.
const (
	ModuleHubspot = "hubspot"
	ModuleOdoo    = "odoo"
)

// KnownModules lists the modules in the order a pass runs them.
var KnownModules = []string{ModuleHubspot, ModuleOdoo}

// DefaultSleepSeconds applies when SLEEP is missing or unparseable.
const DefaultSleepSeconds = 60

// Config is the root configuration. It is built once at start-up and passed
// to constructors.
type Config struct {
	Sync     SyncConfig     `koanf:"sync"`
	Hula     HulaConfig     `koanf:"hula"`
	Hubspot  HubspotConfig  `koanf:"hubspot"`
	Odoo     OdooConfig     `koanf:"odoo"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// SyncConfig controls the scheduler loop.
type SyncConfig struct {
	// Modules is the ordered list from MODULES (comma separated).
	Modules []string `koanf:"modules" env:"MODULES" validate:"required,min=1"`

	// Sleep is the pause between passes in seconds, kept as text so a
	// malformed value falls back to the default instead of failing start-up.
	Sleep string `koanf:"sleep" env:"SLEEP"`

	// CallLogRetention is how long call log rows are kept.
	CallLogRetention time.Duration `koanf:"call_log_retention" env:"CALL_LOG_RETENTION" validate:"gt=0"`
}

// HulaConfig holds the Hula API endpoint and the sync identity.
type HulaConfig struct {
	URL      string        `koanf:"url" env:"HULA_URL" validate:"required"`
	UserID   string        `koanf:"user_id" env:"HULA_USER_ID" validate:"required"`
	Password string        `koanf:"user_pwd" env:"HULA_USER_PWD" validate:"required"`
	LinkBase string        `koanf:"link_base" env:"HULA_LINK_BASE" validate:"omitempty,http_url"`
	Timeout  time.Duration `koanf:"timeout" env:"HULA_TIMEOUT" validate:"gt=0"`
}

// HubspotConfig holds the Hubspot deals API settings.
type HubspotConfig struct {
	URL       string        `koanf:"url" env:"HUBSPOT_URL" validate:"required,http_url"`
	APIKey    string        `koanf:"api_key" env:"HUBSPOT_API_KEY"`
	DealStage string        `koanf:"deal_stage" env:"HUBSPOT_DEAL_STAGE"`
	PageSize  int           `koanf:"page_size" env:"HUBSPOT_PAGE_SIZE" validate:"gte=1,lte=250"`
	RateLimit float64       `koanf:"rate_limit" env:"HUBSPOT_RATE_LIMIT" validate:"gt=0"`
	Timeout   time.Duration `koanf:"timeout" env:"HUBSPOT_TIMEOUT" validate:"gt=0"`
}

// OdooConfig holds the Odoo credentials and the side-process settings.
type OdooConfig struct {
	URL           string        `koanf:"url" env:"ODOO_URL"`
	DB            string        `koanf:"db" env:"ODOO_DB"`
	Username      string        `koanf:"username" env:"ODOO_USERNAME"`
	Password      string        `koanf:"password" env:"ODOO_PASSWORD"`
	ScriptDir     string        `koanf:"script_dir" env:"ODOO_SCRIPT_DIR" validate:"required"`
	Python        string        `koanf:"python" env:"ODOO_PYTHON" validate:"required"`
	ScriptTimeout time.Duration `koanf:"script_timeout" env:"ODOO_SCRIPT_TIMEOUT" validate:"gt=0"`
	SkillSync     bool          `koanf:"skill_sync" env:"ODOO_SKILL_SYNC"`
}

// DatabaseConfig holds the DuckDB location.
type DatabaseConfig struct {
	URL          string `koanf:"url" env:"DATABASE_URL" validate:"required"`
	MaxOpenConns int    `koanf:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" validate:"gte=1"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `koanf:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller" env:"LOG_CALLER"`
}

// MetricsConfig controls the Prometheus listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" env:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// SleepInterval returns the pause between passes. A missing, negative or
// malformed SLEEP yields DefaultSleepSeconds.
func (c *SyncConfig) SleepInterval() time.Duration {
	seconds, err := strconv.ParseUint(strings.TrimSpace(c.Sleep), 10, 32)
	if err != nil {
		return DefaultSleepSeconds * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// Enabled reports whether the named module is listed in MODULES.
func (c *SyncConfig) Enabled(module string) bool {
	for _, m := range c.Modules {
		if strings.EqualFold(strings.TrimSpace(m), module) {
			return true
		}
	}
	return false
}

// UnknownModules returns the MODULES entries that name no known module.
func (c *SyncConfig) UnknownModules() []string {
	var unknown []string
	for _, m := range c.Modules {
		if !isKnownModule(m) {
			unknown = append(unknown, m)
		}
	}
	return unknown
}

func isKnownModule(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range KnownModules {
		if k == name {
			return true
		}
	}
	return false
}

// ProjectLinkBase returns the prefix for links to Hula projects.
func (c *HulaConfig) ProjectLinkBase() string {
	if c.LinkBase != "" {
		return strings.TrimRight(c.LinkBase, "/") + "/"
	}
	return strings.TrimRight(c.URL, "/") + "/projects/"
}
