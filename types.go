package kotoba

import (
	"context"

	"github.com/kotonoha-dev/kotoba/dict"
)

// Stage identifies a step of the pipeline state machine. Transitions are
// strictly forward: Loaded → Translating → Simplifying → Formatting → Written.
type Stage int

const (
	// StageLoaded means the resource file has been read but not yet touched.
	StageLoaded Stage = iota
	// StageTranslating means entries are being resolved via dictionary or provider.
	StageTranslating
	// StageSimplifying means logographic text is being rewritten to kana.
	StageSimplifying
	// StageFormatting means line-break escapes are being inserted.
	StageFormatting
	// StageWritten means the run finished and the dictionary was persisted.
	StageWritten
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StageTranslating:
		return "translating"
	case StageSimplifying:
		return "simplifying"
	case StageFormatting:
		return "formatting"
	case StageWritten:
		return "written"
	}
	return "unknown"
}

// Request carries one source string to the translation collaborator.
type Request struct {
	Text       string            // Source display string
	SourceLang string            // Source language code (e.g., "en_US")
	TargetLang string            // Target language code (e.g., "ja_JP")
	Glossary   map[string]string // Canonical renderings the translation must honor
	Context    string            // Content context (e.g., "Minecraft mod UI text")
}

// Provider is the translation collaborator boundary: an opaque, rate-limited,
// retryable function over one string.
type Provider interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// EntryFailure records a single entry that could not be fully localized.
// The entry's original text is left in the output, never dropped.
type EntryFailure struct {
	Key   string
	Stage Stage
	Err   error
}

// Report summarizes one pipeline run over one resource file.
type Report struct {
	Entries        int             // Total entries in the file
	FromDictionary int             // Entries resolved by dictionary lookup
	Translated     int             // Entries resolved by the provider
	Failures       []EntryFailure  // Per-entry failures, in file order
	Conflicts      []dict.Conflict // Dictionary disagreements observed
	PersistErr     error           // Set when the dictionary could not be flushed
}

// Ok reports whether every entry was localized and the dictionary persisted.
func (r *Report) Ok() bool {
	return len(r.Failures) == 0 && r.PersistErr == nil
}
