package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.URL == "" {
		t.Fatal("default server url empty")
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Fatalf("timeout = %s", cfg.Server.Timeout)
	}
	if cfg.Defaults.PageSize != 20 {
		t.Fatalf("page size = %d", cfg.Defaults.PageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.URL != Default().Server.URL {
		t.Fatalf("url = %s", cfg.Server.URL)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte("server:\n  url: http://example.test/v0\n  timeout: 3s\ndefaults:\n  region: seoul\n  page_size: 5\n")
	if err := os.WriteFile(filepath.Join(dir, "pitchline.yml"), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.URL != "http://example.test/v0" {
		t.Fatalf("url = %s", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 3*time.Second {
		t.Fatalf("timeout = %s", cfg.Server.Timeout)
	}
	if cfg.Defaults.Region != "seoul" || cfg.Defaults.PageSize != 5 {
		t.Fatalf("defaults = %+v", cfg.Defaults)
	}
}

func TestFromYAMLValidates(t *testing.T) {
	if _, err := FromYAML([]byte("server:\n  url: \"\"\n")); err == nil {
		t.Fatal("expected error for empty server url")
	}
	if _, err := FromYAML([]byte("defaults:\n  page_size: -1\n")); err == nil {
		t.Fatal("expected error for negative page size")
	}
	if _, err := FromYAML([]byte("not yaml: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
