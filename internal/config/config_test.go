package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Database.Path == "" {
		t.Error("expected default database path")
	}
	if cfg.Evaluation.Workers <= 0 || cfg.Evaluation.Format == "" {
		t.Errorf("expected evaluation defaults, got %+v", cfg.Evaluation)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "propgraph.yaml")
		src := `
version: 1
database:
  path: /var/lib/propgraph/arena.db
symbols:
  definitions:
    - ./symbols/extra.yaml
evaluation:
  workers: 8
  format: json
`
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, loaded, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded != path {
			t.Errorf("expected loaded path %s, got %s", path, loaded)
		}
		if cfg.Database.Path != "/var/lib/propgraph/arena.db" {
			t.Errorf("unexpected database path %s", cfg.Database.Path)
		}
		if len(cfg.Symbols.Definitions) != 1 {
			t.Errorf("expected one definition file, got %v", cfg.Symbols.Definitions)
		}
		if cfg.Evaluation.Workers != 8 || cfg.Evaluation.Format != "json" {
			t.Errorf("unexpected evaluation config %+v", cfg.Evaluation)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "propgraph.yaml")
		if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, _, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Evaluation.Workers != 4 || cfg.Evaluation.Format != "yaml" {
			t.Errorf("expected defaults, got %+v", cfg.Evaluation)
		}
	})

	t.Run("invalid format rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "propgraph.yaml")
		if err := os.WriteFile(path, []byte("evaluation:\n  format: xml\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, err := LoadFromPath(path); err == nil {
			t.Error("expected invalid format to fail")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := LoadFromPath("/nonexistent/propgraph.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Database.Path = "./custom.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Database.Path != "./custom.db" {
		t.Errorf("expected saved path to round trip, got %s", back.Database.Path)
	}
}

func TestFindConfigPath(t *testing.T) {
	t.Run("environment variable wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "explicit.yaml")
		if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv(EnvConfigPath, path)
		if got := FindConfigPath(); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("unset environment falls through", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
		// A missing explicit path must not be returned.
		if got := FindConfigPath(); got != "" && filepath.Base(got) == "missing.yaml" {
			t.Errorf("missing explicit config must be skipped, got %s", got)
		}
	})
}
