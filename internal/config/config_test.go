package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate cleanly: %v", err)
	}
	if cfg.Index.Bands*cfg.Index.Rows != 126 {
		t.Errorf("default bands*rows = %d, want 126 (matching the worked scenario)", cfg.Index.Bands*cfg.Index.Rows)
	}
}

func TestValidateRejectsBadWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.Width = 7
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for invalid width")
	}
}

func TestValidateRejectsNonPositiveBandsRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.Bands = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for zero bands")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Index.Seed = 42
	cfg.Output.Format = "html"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Index.Seed != 42 {
		t.Errorf("Seed = %d, want 42", loaded.Index.Seed)
	}
	if loaded.Output.Format != "html" {
		t.Errorf("Output.Format = %s, want html", loaded.Output.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
