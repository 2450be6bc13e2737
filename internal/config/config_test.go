package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full config parses", func(t *testing.T) {
		path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: canteen
  password: secret
  database: canteen
rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest
api:
  url: http://localhost:8080/graphql
  timeout_seconds: 20
storage:
  state_dir: /var/lib/canteen
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
			t.Fatalf("unexpected database config: %+v", cfg.Database)
		}
		if cfg.API.URL != "http://localhost:8080/graphql" || cfg.API.TimeoutSeconds != 20 {
			t.Fatalf("unexpected api config: %+v", cfg.API)
		}
		if cfg.Storage.StateDir != "/var/lib/canteen" {
			t.Fatalf("unexpected storage config: %+v", cfg.Storage)
		}
	})

	t.Run("defaults fill in", func(t *testing.T) {
		path := writeConfig(t, `
api:
  url: http://localhost:8080/graphql
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.API.TimeoutSeconds != 10 {
			t.Fatalf("expected default timeout 10, got %d", cfg.API.TimeoutSeconds)
		}
		if cfg.Storage.StateDir != "state" {
			t.Fatalf("expected default state dir, got %q", cfg.Storage.StateDir)
		}
	})

	t.Run("missing api url is rejected", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  state_dir: state
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeConfig(t, "api: [not: valid")
		if _, err := Load(path); err == nil {
			t.Fatal("expected error")
		}
	})
}
