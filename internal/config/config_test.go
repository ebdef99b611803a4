package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_BASE_URL", "https://api.glossary.test")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  shutdown_timeout: "5s"

store:
  path: "/tmp/glossync-test.db"
  busy_timeout: "2s"

backend:
  base_url: "https://api.glossary.test"
  gamification_url: "https://xp.glossary.test/"
  request_timeout: "7s"

sync:
  failure_policy: "drop"
  max_attempts: 3
  id_map_retention: "48h"

network:
  probe_interval: "30s"
  debounce: "1500ms"

cache:
  terms_ttl: "20m"
  memory_entries: 64

log:
  level: "debug"
  format: "text"
  file: "/tmp/glossync.log"
`

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 7420},
		Store:   StoreConfig{Path: "./glossync.db", BusyTimeout: 5 * time.Second},
		Backend: BackendConfig{BaseURL: "https://api.glossary.test", RequestTimeout: 15 * time.Second, HealthPath: "/health"},
		Sync: SyncConfig{
			FailurePolicy:        FailurePolicyRetry,
			RetryAttempts:        2,
			RetryInitialInterval: 500 * time.Millisecond,
			RetryMaxInterval:     5 * time.Second,
			MaxAttempts:          5,
		},
		Network: NetworkConfig{ProbeInterval: 15 * time.Second, Debounce: time.Second},
		Cache:   CacheConfig{MemoryEntries: 512},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("server.write_timeout = %v, want default 60s", cfg.Server.WriteTimeout)
	}

	// Store
	if cfg.Store.Path != "/tmp/glossync-test.db" {
		t.Errorf("store.path = %q", cfg.Store.Path)
	}

	// Backend
	if cfg.Backend.RequestTimeout != 7*time.Second {
		t.Errorf("backend.request_timeout = %v, want 7s", cfg.Backend.RequestTimeout)
	}
	if got := cfg.Backend.ServiceURL("gamification"); got != "https://xp.glossary.test" {
		t.Errorf("gamification url = %q", got)
	}
	if got := cfg.Backend.ServiceURL("glossary"); got != "https://api.glossary.test" {
		t.Errorf("glossary url = %q, want base url fallback", got)
	}

	// Sync
	if cfg.Sync.FailurePolicy != FailurePolicyDrop {
		t.Errorf("sync.failure_policy = %q", cfg.Sync.FailurePolicy)
	}
	if cfg.Sync.IDMapRetention != 48*time.Hour {
		t.Errorf("sync.id_map_retention = %v", cfg.Sync.IDMapRetention)
	}
	if !cfg.Sync.OnStart {
		t.Error("sync.on_start should default to true")
	}
	if !cfg.Sync.OnOnline {
		t.Error("sync.on_online should default to true")
	}

	// Network
	if cfg.Network.Debounce != 1500*time.Millisecond {
		t.Errorf("network.debounce = %v", cfg.Network.Debounce)
	}

	// Cache
	if cfg.Cache.TermsTTL != 20*time.Minute {
		t.Errorf("cache.terms_ttl = %v", cfg.Cache.TermsTTL)
	}
	if cfg.Cache.CommentsTTL != 2*time.Minute {
		t.Errorf("cache.comments_ttl = %v, want default", cfg.Cache.CommentsTTL)
	}

	// Log
	if cfg.Log.Format != "text" || cfg.Log.File != "/tmp/glossync.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("SYNC_FAILURE_POLICY", "retry")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Sync.FailurePolicy != FailurePolicyRetry {
		t.Errorf("sync.failure_policy = %q, want retry (ENV override)", cfg.Sync.FailurePolicy)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7420 {
		t.Errorf("server.port = %d, want 7420 (default)", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want loopback default", cfg.Server.Host)
	}
	if cfg.CORS.AllowedOrigins != "loopback" {
		t.Errorf("cors.allowed_origins = %q, want loopback default", cfg.CORS.AllowedOrigins)
	}
	if cfg.Network.Debounce != time.Second {
		t.Errorf("network.debounce = %v, want 1s", cfg.Network.Debounce)
	}
}

func TestLoad_MissingBackendURL(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected error when backend base url is missing")
	}
}

func TestLoadFrom_ExplicitPathWinsOverEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_UserConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives os.UserConfigDir on linux")
	}
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, "glossync"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeYAML(t, filepath.Join(home, "glossync"), validYAML)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Path != "/tmp/glossync-test.db" {
		t.Errorf("store.path = %q, want value from user config dir", cfg.Store.Path)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RelativeBackendURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = "/api"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative backend url")
	}
}

func TestValidate_BadServiceURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.UsersURL = "not a url"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed users url")
	}
}

func TestValidate_UnknownFailurePolicy(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.FailurePolicy = "forever"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown failure policy")
	}
}

func TestValidate_MaxAttemptsZero(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.MaxAttempts = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_attempts = 0")
	}
}

func TestValidate_RetryIntervalsInverted(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.RetryMaxInterval = cfg.Sync.RetryInitialInterval / 2

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max interval < initial interval")
	}
}

func TestValidate_ProbeIntervalZero(t *testing.T) {
	cfg := validConfig()
	cfg.Network.ProbeInterval = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for probe_interval = 0")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Store.Path = " "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "store.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("SplitList = %v", got)
	}
}
