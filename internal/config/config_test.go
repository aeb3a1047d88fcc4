// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hulasync/hulasync/internal/syncerr"
)

// setBaseEnv sets the variables every configuration needs.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MODULES", "hubspot,odoo")
	t.Setenv("HULA_URL", "https://hula.example.com")
	t.Setenv("HULA_USER_ID", "sync@example.com")
	t.Setenv("HULA_USER_PWD", "secret")
	t.Setenv("HUBSPOT_API_KEY", "hapikey-0123456789")
	t.Setenv("ODOO_URL", "https://odoo.example.com")
	t.Setenv("ODOO_DB", "prod")
	t.Setenv("ODOO_USERNAME", "admin")
	t.Setenv("ODOO_PASSWORD", "odoo-secret")
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Sync.SleepInterval() != 60*time.Second {
		t.Errorf("SleepInterval() = %v, want 60s", cfg.Sync.SleepInterval())
	}
	if cfg.Sync.CallLogRetention != 7*24*time.Hour {
		t.Errorf("CallLogRetention = %v, want 168h", cfg.Sync.CallLogRetention)
	}
	if cfg.Hubspot.DealStage != "closedwon" {
		t.Errorf("DealStage = %q, want closedwon", cfg.Hubspot.DealStage)
	}
	if cfg.Hubspot.PageSize != 250 {
		t.Errorf("PageSize = %d, want 250", cfg.Hubspot.PageSize)
	}
	if cfg.Odoo.Python != "python3" {
		t.Errorf("Python = %q, want python3", cfg.Odoo.Python)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SLEEP", "15")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got := strings.Join(cfg.Sync.Modules, ","); got != "hubspot,odoo" {
		t.Errorf("Modules = %q", got)
	}
	if cfg.Sync.SleepInterval() != 15*time.Second {
		t.Errorf("SleepInterval() = %v, want 15s", cfg.Sync.SleepInterval())
	}
	if cfg.Hula.UserID != "sync@example.com" {
		t.Errorf("Hula.UserID = %q", cfg.Hula.UserID)
	}
	if cfg.Odoo.Password != "odoo-secret" {
		t.Errorf("Odoo.Password not loaded")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sync:\n  modules: [odoo]\n  sleep: \"30\"\nhubspot:\n  deal_stage: appointmentscheduled\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	os.Unsetenv("MODULES") //nolint:errcheck // t.Setenv restores it
	t.Setenv("SLEEP", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(cfg.Sync.Modules) != 1 || cfg.Sync.Modules[0] != "odoo" {
		t.Errorf("Modules = %v, want [odoo]", cfg.Sync.Modules)
	}
	if cfg.Sync.SleepInterval() != 45*time.Second {
		t.Errorf("environment should override file, got %v", cfg.Sync.SleepInterval())
	}
	if cfg.Hubspot.DealStage != "appointmentscheduled" {
		t.Errorf("DealStage = %q", cfg.Hubspot.DealStage)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("HULA_USER_PWD", "")
	t.Setenv("ODOO_DB", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !syncerr.Is(err, syncerr.KindConfig) {
		t.Errorf("expected config error, got %v", err)
	}
	for _, want := range []string{"HULA_USER_PWD is required", "ODOO_DB is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestValidate_DisabledModuleNotRequired(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sync.Modules = []string{"hubspot"}
	cfg.Hula = HulaConfig{URL: "https://hula.example.com", UserID: "u", Password: "p", Timeout: time.Second}
	cfg.Hubspot.APIKey = "key"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("odoo settings should not be required: %v", err)
	}
}

func TestValidate_BadHulaURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sync.Modules = []string{"hubspot"}
	cfg.Hula = HulaConfig{URL: "ftp://hula", UserID: "u", Password: "p", Timeout: time.Second}
	cfg.Hubspot.APIKey = "key"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "HULA_URL scheme must be http or https") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSleepInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"60", 60 * time.Second},
		{" 5 ", 5 * time.Second},
		{"0", 0},
		{"", 60 * time.Second},
		{"-3", 60 * time.Second},
		{"ten", 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := SyncConfig{Sleep: tt.in}
			if got := c.SleepInterval(); got != tt.want {
				t.Errorf("SleepInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModules(t *testing.T) {
	c := SyncConfig{Modules: []string{"hubspot", " Odoo", "salesforce"}}

	if !c.Enabled(ModuleHubspot) || !c.Enabled(ModuleOdoo) {
		t.Error("expected both modules enabled")
	}
	unknown := c.UnknownModules()
	if len(unknown) != 1 || unknown[0] != "salesforce" {
		t.Errorf("UnknownModules() = %v", unknown)
	}
}

func TestProjectLinkBase(t *testing.T) {
	h := HulaConfig{URL: "https://hula.example.com/"}
	if got := h.ProjectLinkBase(); got != "https://hula.example.com/projects/" {
		t.Errorf("ProjectLinkBase() = %q", got)
	}
	h.LinkBase = "https://app.hula.example.com/p"
	if got := h.ProjectLinkBase(); got != "https://app.hula.example.com/p/" {
		t.Errorf("ProjectLinkBase() = %q", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	if got := envTransformFunc("HULA_USER_PWD"); got != "hula.user_pwd" {
		t.Errorf("got %q", got)
	}
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unmapped variable should be dropped, got %q", got)
	}
}
