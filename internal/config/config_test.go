package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
app:
  env: staging
storage:
  dsn: postgres://jane:pw@localhost:5432/hellojane
  postgres:
    max_conns: 12
    conn_max_lifetime: 30m
cache:
  driver: redis
  host: cache.internal
  port: 6380
  prefix: hj
verify:
  base_url: https://api.authy.com
  api_key: yaml-key
smtp:
  host: smtp.internal
  port: 587
  from: no-reply@hellojane.dev
log:
  level: warn
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "staging" {
		t.Fatalf("env = %q", cfg.App.Env)
	}
	if cfg.Storage.Postgres.MaxConns != 12 || cfg.Storage.Postgres.ConnMaxLifetime != "30m" {
		t.Fatalf("postgres tuning = %+v", cfg.Storage.Postgres)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.Port != 6380 {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
	if cfg.Verify.APIKey != "yaml-key" {
		t.Fatalf("verify = %+v", cfg.Verify)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("STORAGE_DSN", "postgres://env@db/override")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("VERIFY_API_KEY", "env-key")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.DSN != "postgres://env@db/override" {
		t.Fatalf("dsn = %q", cfg.Storage.DSN)
	}
	if cfg.Cache.Driver != "memory" {
		t.Fatalf("cache driver = %q", cfg.Cache.Driver)
	}
	if cfg.Verify.APIKey != "env-key" {
		t.Fatalf("verify key = %q", cfg.Verify.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want lowercased", cfg.Log.Level)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  dsn: postgres://x@y/z\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "dev" || cfg.Cache.Driver != "memory" || cfg.Log.Level != "info" {
		t.Fatalf("defaults = env %q cache %q log %q", cfg.App.Env, cfg.Cache.Driver, cfg.Log.Level)
	}
}

func TestMissingDSNFails(t *testing.T) {
	if _, err := Load(writeConfig(t, "app:\n  env: dev\n")); err == nil {
		t.Fatal("expected validation error for missing dsn")
	}
}

func TestProdRequiresVerifyKey(t *testing.T) {
	body := "app:\n  env: prod\nstorage:\n  dsn: postgres://x@y/z\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for missing verify key in prod")
	}
}
