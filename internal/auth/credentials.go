// Package auth keeps the session credential captured from the client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/domain"
)

// SessionKey is the settings key holding the current bearer token.
const SessionKey = "session.token"

// Credential is an inspected bearer token.
type Credential struct {
	Token     string     `json:"-"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Opaque    bool       `json:"opaque"`
}

// Expired reports whether the credential carries an expiry at or before now.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Inspect reads subject and expiry from a JWT without verifying its signature.
// Tokens that are not JWTs are accepted as opaque credentials with no expiry.
func Inspect(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, domain.ErrAuthMissing
	}

	cred := Credential{Token: token, Opaque: true}
	if strings.Count(token, ".") != 2 {
		return cred, nil
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return cred, nil
	}

	cred.Opaque = false
	cred.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		cred.ExpiresAt = &exp
	}
	return cred, nil
}

type settingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, at time.Time) error
	Delete(ctx context.Context, key string) error
}

// Credentials persists the current session token and checks it before sync runs.
type Credentials struct {
	settings settingsStore
	clock    clockwork.Clock

	mu     sync.RWMutex
	cached *Credential
}

// NewCredentials creates a credential store backed by settings.
func NewCredentials(settings settingsStore, clock clockwork.Clock) *Credentials {
	return &Credentials{settings: settings, clock: clock}
}

// Set stores token as the current session credential.
func (c *Credentials) Set(ctx context.Context, token string) (Credential, error) {
	cred, err := Inspect(token)
	if err != nil {
		return Credential{}, domain.NewValidationError("token", "required")
	}
	if cred.Expired(c.clock.Now()) {
		return Credential{}, domain.NewValidationError("token", "expired")
	}

	if err := c.settings.Set(ctx, SessionKey, cred.Token, c.clock.Now()); err != nil {
		return Credential{}, fmt.Errorf("auth.Set: %w", err)
	}

	c.mu.Lock()
	c.cached = &cred
	c.mu.Unlock()
	return cred, nil
}

// Current returns the stored credential, or domain.ErrAuthMissing when none
// is stored or it has expired.
func (c *Credentials) Current(ctx context.Context) (Credential, error) {
	c.mu.RLock()
	cached := c.cached
	c.mu.RUnlock()

	if cached == nil {
		token, err := c.settings.Get(ctx, SessionKey)
		if errors.Is(err, domain.ErrNotFound) {
			return Credential{}, domain.ErrAuthMissing
		}
		if err != nil {
			return Credential{}, fmt.Errorf("auth.Current: %w", err)
		}
		cred, err := Inspect(token)
		if err != nil {
			return Credential{}, err
		}

		c.mu.Lock()
		c.cached = &cred
		c.mu.Unlock()
		cached = &cred
	}

	if cached.Expired(c.clock.Now()) {
		return Credential{}, fmt.Errorf("auth.Current: token expired: %w", domain.ErrAuthMissing)
	}
	return *cached, nil
}

// Clear forgets the current credential.
func (c *Credentials) Clear(ctx context.Context) error {
	if err := c.settings.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("auth.Clear: %w", err)
	}
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
	return nil
}
