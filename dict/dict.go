// Package dict implements the terminology dictionary: the single cross-run
// source of truth mapping a source-language term to its canonical
// target-language rendering.
package dict

import (
	"context"
	"strings"
)

// Store is the interface for terminology dictionary backends.
type Store interface {
	// Lookup returns the canonical rendering for a normalized source term.
	// Pure read, no side effect.
	Lookup(ctx context.Context, term string) (string, bool, error)

	// Record inserts term → rendering if the term is unseen and returns the
	// canonical rendering. If the term is already present with a different
	// rendering, the stored rendering wins (first-seen-wins) and conflict is
	// true; the disagreement is reported, never raised as an error.
	Record(ctx context.Context, term, rendering string) (canonical string, conflict bool, err error)
}

// Persister is implemented by stores with an explicit flush step. Persist
// merges with external edits rather than overwriting: terms added to the
// backing store since the run began are never dropped.
type Persister interface {
	Persist() error
}

// Snapshotter is implemented by stores that can enumerate their terms.
// The snapshot is used as the glossary handed to the translation provider
// and for terminology enforcement over translated text.
type Snapshotter interface {
	Snapshot() map[string]string
}

// Conflict is reported when an incoming rendering disagrees with the stored
// canonical rendering. The stored rendering always wins.
type Conflict struct {
	Term      string // Normalized source term
	Canonical string // Stored rendering that was kept
	Rejected  string // Incoming rendering that was discarded
}

// Normalize canonicalizes a source term for matching. Matching is on the
// exact normalized string; no partial or substring matching, which avoids
// accidentally unifying unrelated short phrases.
func Normalize(term string) string {
	return strings.TrimSpace(term)
}
