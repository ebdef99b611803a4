package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Backend BackendConfig `yaml:"backend"`
	Sync    SyncConfig    `yaml:"sync"`
	Network NetworkConfig `yaml:"network"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	CORS    CORSConfig    `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"loopback"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds loopback HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"7420"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig holds local durable store settings.
type StoreConfig struct {
	Path        string        `yaml:"path"         env:"STORE_PATH"         env-default:"./glossync.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"STORE_BUSY_TIMEOUT" env-default:"5s"`
}

// BackendConfig holds the backend service endpoints. Service URLs fall back to BaseURL.
type BackendConfig struct {
	BaseURL         string        `yaml:"base_url"         env:"BACKEND_BASE_URL"         env-required:"true"`
	GlossaryURL     string        `yaml:"glossary_url"     env:"BACKEND_GLOSSARY_URL"`
	GamificationURL string        `yaml:"gamification_url" env:"BACKEND_GAMIFICATION_URL"`
	UsersURL        string        `yaml:"users_url"        env:"BACKEND_USERS_URL"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"BACKEND_REQUEST_TIMEOUT"  env-default:"15s"`
	HealthPath      string        `yaml:"health_path"      env:"BACKEND_HEALTH_PATH"      env-default:"/health"`
}

// Failure policies for replay.
const (
	FailurePolicyRetry = "retry"
	FailurePolicyDrop  = "drop"
)

// SyncConfig holds sync orchestrator settings.
type SyncConfig struct {
	FailurePolicy        string        `yaml:"failure_policy"         env:"SYNC_FAILURE_POLICY"         env-default:"retry"`
	RetryAttempts        uint64        `yaml:"retry_attempts"         env:"SYNC_RETRY_ATTEMPTS"         env-default:"2"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval" env:"SYNC_RETRY_INITIAL_INTERVAL" env-default:"500ms"`
	RetryMaxInterval     time.Duration `yaml:"retry_max_interval"     env:"SYNC_RETRY_MAX_INTERVAL"     env-default:"5s"`
	MaxAttempts          int           `yaml:"max_attempts"           env:"SYNC_MAX_ATTEMPTS"           env-default:"5"`
	IDMapRetention       time.Duration `yaml:"id_map_retention"       env:"SYNC_ID_MAP_RETENTION"       env-default:"720h"`
	OnStart              bool          `yaml:"on_start"               env:"SYNC_ON_START"               env-default:"true"`
	OnOnline             bool          `yaml:"on_online"              env:"SYNC_ON_ONLINE"              env-default:"true"`
}

// NetworkConfig holds network-state monitor settings.
type NetworkConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval" env:"NETWORK_PROBE_INTERVAL" env-default:"15s"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"  env:"NETWORK_PROBE_TIMEOUT"  env-default:"5s"`
	Debounce      time.Duration `yaml:"debounce"       env:"NETWORK_DEBOUNCE"       env-default:"1s"`
	AssumeOnline  bool          `yaml:"assume_online"  env:"NETWORK_ASSUME_ONLINE"  env-default:"false"`
}

// CacheConfig holds read-path cache settings.
type CacheConfig struct {
	TermsTTL      time.Duration `yaml:"terms_ttl"      env:"CACHE_TERMS_TTL"      env-default:"10m"`
	CommentsTTL   time.Duration `yaml:"comments_ttl"   env:"CACHE_COMMENTS_TTL"   env-default:"2m"`
	XPTTL         time.Duration `yaml:"xp_ttl"         env:"CACHE_XP_TTL"         env-default:"1m"`
	ProfilesTTL   time.Duration `yaml:"profiles_ttl"   env:"CACHE_PROFILES_TTL"   env-default:"30m"`
	MemoryEntries int           `yaml:"memory_entries" env:"CACHE_MEMORY_ENTRIES" env-default:"512"`
	MemoryTTL     time.Duration `yaml:"memory_ttl"     env:"CACHE_MEMORY_TTL"     env-default:"5m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"json"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"20"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"14"`
}

// SplitList splits a comma-separated setting, trimming blanks.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
