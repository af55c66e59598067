package dict

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a thread-safe in-memory terminology store. It is the
// substitute callers use in tests and for runs that should not touch a
// persisted dictionary.
type MemoryStore struct {
	terms map[string]string
	mu    sync.RWMutex
}

// NewMemoryStore creates an in-memory store, optionally seeded with
// existing terms.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	terms := make(map[string]string, len(seed))
	for term, rendering := range seed {
		terms[Normalize(term)] = rendering
	}
	return &MemoryStore{terms: terms}
}

// Lookup retrieves the canonical rendering for a term.
func (s *MemoryStore) Lookup(_ context.Context, term string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rendering, ok := s.terms[Normalize(term)]
	return rendering, ok, nil
}

// Record inserts term → rendering if unseen. The existing rendering wins on
// disagreement.
func (s *MemoryStore) Record(_ context.Context, term, rendering string) (string, bool, error) {
	key := Normalize(term)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.terms[key]; ok {
		return existing, existing != rendering, nil
	}
	s.terms[key] = rendering
	return rendering, false, nil
}

// Snapshot returns a copy of all terms.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.terms)
}

// Len returns the number of terms in the store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// Verify MemoryStore implements the store interfaces
var (
	_ Store       = (*MemoryStore)(nil)
	_ Snapshotter = (*MemoryStore)(nil)
)
