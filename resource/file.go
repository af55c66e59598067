// Package resource reads and writes flat JSON language resource files:
// a mapping of string keys to display strings, keyed by identifiers
// referenced elsewhere in the content pack.
package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// File is a flat key → display-string mapping with stable key order.
// The order is the file's own entry order; pipeline stages iterate it
// deterministically and never add or remove keys.
type File struct {
	keys   []string
	values map[string]string
}

// New creates an empty resource file.
func New() *File {
	return &File{values: make(map[string]string)}
}

// MalformedError indicates the input is not a valid flat string-to-string
// mapping. Fatal for that file; nothing derived from it is persisted.
type MalformedError struct {
	Message string
	Cause   error
}

func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed resource file: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed resource file: %s", e.Message)
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// Set stores a value, appending the key on first use.
func (f *File) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get retrieves the value for a key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether the key is present.
func (f *File) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (f *File) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of entries.
func (f *File) Len() int {
	return len(f.keys)
}

// Clone returns a deep copy preserving key order.
func (f *File) Clone() *File {
	out := New()
	for _, k := range f.keys {
		out.Set(k, f.values[k])
	}
	return out
}

// Decode parses a flat JSON object from r, preserving key order. Anything
// other than a single object of string values is a MalformedError.
func Decode(r io.Reader) (*File, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, &MalformedError{Message: "not valid JSON", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &MalformedError{Message: fmt.Sprintf("expected object, got %v", tok)}
	}

	f := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &MalformedError{Message: "reading key", Cause: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &MalformedError{Message: fmt.Sprintf("non-string key %v", keyTok)}
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, &MalformedError{Message: fmt.Sprintf("reading value for %q", key), Cause: err}
		}
		val, ok := valTok.(string)
		if !ok {
			return nil, &MalformedError{Message: fmt.Sprintf("value for %q is not a string", key)}
		}

		f.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return nil, &MalformedError{Message: "unterminated object", Cause: err}
	}
	if dec.More() {
		return nil, &MalformedError{Message: "trailing content after object"}
	}

	return f, nil
}

// Encode writes the mapping as an indented JSON object in key order, with
// non-ASCII text left unescaped.
func (f *File) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		if err := writeJSONString(&buf, key); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := writeJSONString(&buf, f.values[key]); err != nil {
			return err
		}
	}
	if len(f.keys) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// LoadFile reads a resource file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// SaveFile writes the resource file to disk.
func (f *File) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeJSONString writes a JSON string literal without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a trailing newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
