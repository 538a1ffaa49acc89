package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hostnav/internal/platform/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.TokenEnv, "")
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "hostnav.db") || cfg.PluginDir != filepath.Join(dir, "plugins") {
		t.Fatalf("unexpected derived paths: %+v", cfg)
	}
	if cfg.Source != config.SourceAPI || cfg.Server.Timeout != 15*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("api source without url must fail validation")
	}
}

func TestLoadReadsYAMLAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.TokenEnv, "from-env")
	body := `
source: api
server:
  url: https://bastion.example.com
  token: from-file
  timeout: 5s
tree:
  load_async: true
  search_ttl: 1m
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.URL != "https://bastion.example.com" || cfg.Server.Timeout != 5*time.Second {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.Token != "from-env" {
		t.Fatalf("environment token must win, got %q", cfg.Server.Token)
	}
	if !cfg.Tree.LoadAsync || cfg.Tree.SearchTTL != time.Minute {
		t.Fatalf("unexpected tree config: %+v", cfg.Tree)
	}

	source, fixture, async := config.SourceFile, filepath.Join(dir, "hosts.yaml"), false
	cfg.Apply(config.Overrides{Source: &source, Fixture: &fixture, Async: &async})
	if cfg.Source != config.SourceFile || cfg.Tree.LoadAsync {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if _, err := config.Load(dir, filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cfg.Source = "ldap"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported source error")
	}
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}
