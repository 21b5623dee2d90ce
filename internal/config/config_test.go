package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WatchIntervalMS != 250 {
		t.Errorf("expected default interval 250, got %d", cfg.WatchIntervalMS)
	}
	if len(cfg.Extensions) != 3 {
		t.Errorf("expected 3 default extensions, got %v", cfg.Extensions)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "watch_interval_ms = 50\nextensions = [\".mon\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "mondot.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WatchIntervalMS != 50 {
		t.Errorf("expected overridden interval 50, got %d", cfg.WatchIntervalMS)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".mon" {
		t.Errorf("expected overridden extensions [.mon], got %v", cfg.Extensions)
	}
}

func TestLoadLiveReloadAddr(t *testing.T) {
	dir := t.TempDir()
	content := "live_reload_addr = \"127.0.0.1:7337\"\n"
	if err := os.WriteFile(filepath.Join(dir, "mondot.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LiveReloadAddr != "127.0.0.1:7337" {
		t.Errorf("expected live reload addr, got %q", cfg.LiveReloadAddr)
	}
}
