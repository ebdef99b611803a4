package orchestrator

import (
	"fmt"
	"slices"

	"github.com/tidwall/sjson"

	"github.com/heartmarshall/glossync/internal/domain"
)

// IdentifierMap maps temporary ids to the permanent ids the server assigned.
// It lives for one run and is seeded from persisted mappings.
type IdentifierMap struct {
	ids map[string]string
}

// NewIdentifierMap creates a map seeded with the given mappings.
func NewIdentifierMap(seed map[string]string) *IdentifierMap {
	m := &IdentifierMap{ids: make(map[string]string, len(seed))}
	for k, v := range seed {
		m.ids[k] = v
	}
	return m
}

// Set records a mapping.
func (m *IdentifierMap) Set(tempID, permID string) {
	m.ids[tempID] = permID
}

// Resolve returns the permanent id for tempID.
func (m *IdentifierMap) Resolve(tempID string) (string, bool) {
	id, ok := m.ids[tempID]
	return id, ok
}

// Len returns the number of mappings.
func (m *IdentifierMap) Len() int { return len(m.ids) }

// Rewrite replaces every mapped reference in e, both in Refs and at each
// ref's field inside the payload. The input entry is not modified.
func (m *IdentifierMap) Rewrite(e domain.QueueEntry) (domain.QueueEntry, error) {
	if len(e.Refs) == 0 {
		return e, nil
	}

	refs := slices.Clone(e.Refs)
	payload := e.Payload
	for i, ref := range refs {
		perm, ok := m.ids[ref.ID]
		if !ok {
			continue
		}
		out, err := sjson.SetBytes(payload, ref.Field, perm)
		if err != nil {
			return e, fmt.Errorf("rewrite %s in %s/%s: %w", ref.Field, e.Queue, e.ID, err)
		}
		payload = out
		refs[i].ID = perm
	}

	e.Refs = refs
	e.Payload = payload
	return e, nil
}
