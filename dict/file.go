package dict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore is a terminology store backed by a flat JSON file
// (source term → canonical rendering). The file is loaded once at
// construction and flushed with Persist.
//
// Persist merges with the file's current content instead of overwriting it:
// terms added to the file by other runs or by hand since the load are kept,
// and on a per-term collision the file's value wins. This implements the
// first-seen-wins rule for concurrent runs sharing one dictionary file and
// lets human-curated corrections in the file stick.
type FileStore struct {
	path  string
	terms map[string]string
	mu    sync.RWMutex
}

// NewFileStore loads a terminology store from path. A missing file yields an
// empty store; a file that exists but does not parse is an error, so a
// malformed dictionary is never silently replaced.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		terms: make(map[string]string),
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}

	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
	}
	for term, rendering := range raw {
		s.terms[Normalize(term)] = rendering
	}

	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Lookup retrieves the canonical rendering for a term.
func (s *FileStore) Lookup(_ context.Context, term string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rendering, ok := s.terms[Normalize(term)]
	return rendering, ok, nil
}

// Record inserts term → rendering if unseen. The existing rendering wins on
// disagreement.
func (s *FileStore) Record(_ context.Context, term, rendering string) (string, bool, error) {
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
func (s *FileStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.terms)
}

// Persist merges the in-memory terms with the file's current content and
// writes the result atomically (temp file plus rename). Safe to call more
// than once; partial progress from an aborted run is preserved.
func (s *FileStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]string, len(s.terms))

	// Re-read the file: external edits win per-term, external additions are kept.
	data, err := os.ReadFile(s.path) // #nosec G304 - path is intentionally user-provided
	if err == nil {
		current := make(map[string]string)
		if jerr := json.Unmarshal(data, &current); jerr == nil {
			for term, rendering := range current {
				merged[Normalize(term)] = rendering
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("re-reading dictionary %s: %w", s.path, err)
	}

	for term, rendering := range s.terms {
		if _, ok := merged[term]; !ok {
			merged[term] = rendering
		}
	}

	out, err := marshalSorted(merged)
	if err != nil {
		return fmt.Errorf("encoding dictionary: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".dict-*")
	if err != nil {
		return fmt.Errorf("creating temp dictionary: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing dictionary: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing dictionary %s: %w", s.path, err)
	}

	s.terms = merged
	return nil
}

// marshalSorted encodes terms as an indented JSON object with sorted keys
// and unescaped non-ASCII, matching the hand-edited dictionary format.
func marshalSorted(terms map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]struct{ k, v string }, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, struct{ k, v string }{k, terms[k]})
	}

	var buf []byte
	buf = append(buf, '{')
	for i, kv := range ordered {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n', ' ', ' ')
		kb, err := encodeJSONString(kv.k)
		if err != nil {
			return nil, err
		}
		vb, err := encodeJSONString(kv.v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':', ' ')
		buf = append(buf, vb...)
	}
	if len(ordered) > 0 {
		buf = append(buf, '\n')
	}
	buf = append(buf, '}', '\n')
	return buf, nil
}

// encodeJSONString marshals a string without HTML escaping.
func encodeJSONString(s string) ([]byte, error) {
	var sb bytes.Buffer
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a trailing newline.
	return bytes.TrimSuffix(sb.Bytes(), []byte("\n")), nil
}

// Verify FileStore implements the store interfaces
var (
	_ Store       = (*FileStore)(nil)
	_ Persister   = (*FileStore)(nil)
	_ Snapshotter = (*FileStore)(nil)
)
