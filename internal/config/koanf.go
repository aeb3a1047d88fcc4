// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/hulasync/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			Modules:          nil,
			Sleep:            "60",
			CallLogRetention: 7 * 24 * time.Hour,
		},
		Hula: HulaConfig{
			Timeout: 30 * time.Second,
		},
		Hubspot: HubspotConfig{
			URL:       "https://api.hubapi.com",
			DealStage: "closedwon",
			PageSize:  250,
			RateLimit: 9, // daily key quota is 10 req/s
			Timeout:   30 * time.Second,
		},
		Odoo: OdooConfig{
			ScriptDir:     "scripts/odoo",
			Python:        "python3",
			ScriptTimeout: 5 * time.Minute,
			SkillSync:     true,
		},
		Database: DatabaseConfig{
			URL:          "hulasync.duckdb",
			MaxOpenConns: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// sliceConfigPaths are comma separated in the environment.
var sliceConfigPaths = []string{"sync.modules"}

// envMappings maps lower-cased environment names to koanf paths.
var envMappings = map[string]string{
	"modules":            "sync.modules",
	"sleep":              "sync.sleep",
	"call_log_retention": "sync.call_log_retention",

	"hula_url":       "hula.url",
	"hula_user_id":   "hula.user_id",
	"hula_user_pwd":  "hula.user_pwd",
	"hula_link_base": "hula.link_base",
	"hula_timeout":   "hula.timeout",

	"hubspot_url":        "hubspot.url",
	"hubspot_api_key":    "hubspot.api_key",
	"hubspot_deal_stage": "hubspot.deal_stage",
	"hubspot_page_size":  "hubspot.page_size",
	"hubspot_rate_limit": "hubspot.rate_limit",
	"hubspot_timeout":    "hubspot.timeout",

	"odoo_url":            "odoo.url",
	"odoo_db":             "odoo.db",
	"odoo_username":       "odoo.username",
	"odoo_password":       "odoo.password",
	"odoo_script_dir":     "odoo.script_dir",
	"odoo_python":         "odoo.python",
	"odoo_script_timeout": "odoo.script_timeout",
	"odoo_skill_sync":     "odoo.skill_sync",

	"database_url":            "database.url",
	"database_max_open_conns": "database.max_open_conns",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_addr": "metrics.addr",
}

// envTransformFunc returns "" for unmapped variables so unrelated
// environment entries never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds and validates the configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// processSliceFields splits comma separated strings from the environment.
// Values that are already slices (YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
