package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// StoreName identifies a cached-entity store.
type StoreName string

const (
	StoreTerms          StoreName = "terms"
	StoreCommentsByTerm StoreName = "comments-by-term"
	StoreXPRecords      StoreName = "xp-records"
	StoreProfiles       StoreName = "profiles"
)

// storeIndexes lists the payload fields each store can be queried by.
var storeIndexes = map[StoreName][]string{
	StoreTerms:          {"status", "language", "author_id"},
	StoreCommentsByTerm: {"term_id"},
	StoreXPRecords:      {"user_id"},
	StoreProfiles:       {"username"},
}

func (s StoreName) String() string { return string(s) }

func (s StoreName) IsValid() bool {
	_, ok := storeIndexes[s]
	return ok
}

// HasIndex reports whether the store declares the named index.
func (s StoreName) HasIndex(index string) bool {
	return slices.Contains(storeIndexes[s], index)
}

// ParseStoreName validates a store name.
func ParseStoreName(s string) (StoreName, error) {
	name := StoreName(s)
	if !name.IsValid() {
		return "", fmt.Errorf("unknown store %q: %w", s, ErrNotFound)
	}
	return name, nil
}

// CachedEntity is a read-through mirror of a server resource, or a synthetic
// optimistic row keyed by a temporary identifier.
type CachedEntity struct {
	Store       StoreName       `json:"store"`
	Key         string          `json:"key"`
	Data        json.RawMessage `json:"data"`
	LastUpdated time.Time       `json:"last_updated"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Synthetic   bool            `json:"synthetic"`
}

// Fresh reports whether the entity has not expired at now.
func (e CachedEntity) Fresh(now time.Time) bool {
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// CachedResponse is a raw read response kept by the cache interception layer.
type CachedResponse struct {
	Key        string              `json:"key"`
	StatusCode int                 `json:"status"`
	Header     map[string][]string `json:"header"`
	Body       []byte              `json:"body"`
	StoredAt   time.Time           `json:"stored_at"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
}

// Fresh reports whether the response has not expired at now.
func (r CachedResponse) Fresh(now time.Time) bool {
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}
