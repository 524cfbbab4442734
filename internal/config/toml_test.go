package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Analyze.DataDir != nil || cfg.Analyze.NoTUI != nil || cfg.Sample.Rows != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[analyze]\ndata-dir = \"/data\"\nno-tui = true\n\n[sample]\nrows = 250\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Analyze.DataDir == nil || *cfg.Analyze.DataDir != "/data" {
		t.Fatalf("unexpected data-dir: %v", cfg.Analyze.DataDir)
	}
	if cfg.Analyze.NoTUI == nil || !*cfg.Analyze.NoTUI {
		t.Fatalf("unexpected no-tui: %v", cfg.Analyze.NoTUI)
	}
	if cfg.Analyze.Results != nil {
		t.Fatalf("results should be unset, got %v", *cfg.Analyze.Results)
	}
	if cfg.Sample.Rows == nil || *cfg.Sample.Rows != 250 {
		t.Fatalf("unexpected rows: %v", cfg.Sample.Rows)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("analyze = not toml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
