package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
service:
  snapshot_interval: 2m
  leader_lock_ttl: 15s
  enable_sync: true
redis:
  addr: tcp://localhost:6379/1
badger:
  dir: /var/lib/curve
feed:
  base_url: http://gateway:8080
  basic_auth: user:pass
logging:
  level: debug
  max_size: 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if time.Duration(cfg.Service.SnapshotInterval) != 2*time.Minute {
		t.Errorf("snapshot interval: got %v", cfg.Service.SnapshotInterval)
	}
	if time.Duration(cfg.Service.LeaderLockTTL) != 15*time.Second {
		t.Errorf("leader lock ttl: got %v", cfg.Service.LeaderLockTTL)
	}
	if !cfg.Service.EnableSync {
		t.Error("enable_sync not parsed")
	}
	if cfg.Redis.Addr != "tcp://localhost:6379/1" {
		t.Errorf("redis addr: got %q", cfg.Redis.Addr)
	}
	if cfg.Feed.BasicAuth != "user:pass" {
		t.Errorf("basic auth: got %q", cfg.Feed.BasicAuth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.MaxSize != 50 {
		t.Errorf("logging config: %+v", cfg.Logging)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
redis:
  addr: tcp://localhost:6379/0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if time.Duration(cfg.Service.SnapshotInterval) != 5*time.Minute {
		t.Errorf("default snapshot interval: got %v", cfg.Service.SnapshotInterval)
	}
	if time.Duration(cfg.Service.LeaderLockTTL) != 30*time.Second {
		t.Errorf("default leader lock ttl: got %v", cfg.Service.LeaderLockTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level: got %q", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSize != 100 {
		t.Errorf("default log max size: got %d", cfg.Logging.MaxSize)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CURVE_TEST_REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, `
redis:
  addr: tcp://:${CURVE_TEST_REDIS_PASSWORD}@localhost:6379/0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Redis.Addr != "tcp://:s3cret@localhost:6379/0" {
		t.Errorf("env expansion failed: got %q", cfg.Redis.Addr)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
service:
  snapshot_interval: sometimes
`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an unparseable duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
