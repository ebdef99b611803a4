package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store.path is required"))
	}

	if err := c.Backend.validate(); err != nil {
		errs = append(errs, fmt.Errorf("backend: %w", err))
	}
	if err := c.Sync.validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}
	if c.Network.ProbeInterval <= 0 {
		errs = append(errs, fmt.Errorf("network.probe_interval must be > 0 (got %s)", c.Network.ProbeInterval))
	}
	if c.Network.Debounce < 0 {
		errs = append(errs, fmt.Errorf("network.debounce must be >= 0 (got %s)", c.Network.Debounce))
	}
	if c.Cache.MemoryEntries <= 0 {
		errs = append(errs, fmt.Errorf("cache.memory_entries must be > 0 (got %d)", c.Cache.MemoryEntries))
	}

	return errors.Join(errs...)
}

func (b *BackendConfig) validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"base_url":         b.BaseURL,
		"glossary_url":     b.GlossaryURL,
		"gamification_url": b.GamificationURL,
		"users_url":        b.UsersURL,
	} {
		if raw == "" && name != "base_url" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL (got %q)", name, raw))
		}
	}
	if b.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be > 0 (got %s)", b.RequestTimeout))
	}
	return errors.Join(errs...)
}

func (s *SyncConfig) validate() error {
	switch s.FailurePolicy {
	case FailurePolicyRetry, FailurePolicyDrop:
	default:
		return fmt.Errorf("failure_policy must be %q or %q (got %q)", FailurePolicyRetry, FailurePolicyDrop, s.FailurePolicy)
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", s.MaxAttempts)
	}
	if s.RetryInitialInterval <= 0 || s.RetryMaxInterval < s.RetryInitialInterval {
		return fmt.Errorf("retry intervals must satisfy 0 < initial <= max (got %s, %s)", s.RetryInitialInterval, s.RetryMaxInterval)
	}
	return nil
}

// ServiceURL returns the base URL for a named backend service.
func (b BackendConfig) ServiceURL(service string) string {
	var u string
	switch service {
	case "glossary":
		u = b.GlossaryURL
	case "gamification":
		u = b.GamificationURL
	case "users":
		u = b.UsersURL
	}
	if u == "" {
		u = b.BaseURL
	}
	return strings.TrimRight(u, "/")
}
