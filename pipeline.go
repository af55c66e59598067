package kotoba

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kotonoha-dev/kotoba/dict"
	"github.com/kotonoha-dev/kotoba/resource"
)

// Pipeline localizes one resource file: dictionary-backed translation with
// terminology enforcement, script simplification and line-break formatting,
// in that fixed order. Entries are processed one at a time in the file's key
// order; terminology consistency requires each entry's dictionary
// lookup/record to finish before the next entry begins.
type Pipeline struct {
	targetLang string
	sourceLang string
	store      dict.Store
	translator Provider
	pacer      *Pacer
	retry      RetryPolicy
	simplifier *Simplifier
	rules      FormatRules
	delimiter  string
	context    string
	log        zerolog.Logger
	stage      Stage
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithSourceLang sets the source language (default "en_US").
func WithSourceLang(lang string) Option {
	return func(p *Pipeline) {
		p.sourceLang = lang
	}
}

// WithInterval sets the minimum spacing between translation calls.
func WithInterval(interval time.Duration) Option {
	return func(p *Pipeline) {
		p.pacer = NewPacer(interval)
	}
}

// WithPacer supplies a pacer directly, for sharing one across files.
func WithPacer(pacer *Pacer) Option {
	return func(p *Pipeline) {
		p.pacer = pacer
	}
}

// WithRetryPolicy sets the bounded-attempt policy for provider calls.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) {
		p.retry = policy
	}
}

// WithDelimiter sets the separator between simplified phonetic segments.
func WithDelimiter(delimiter string) Option {
	return func(p *Pipeline) {
		p.delimiter = delimiter
	}
}

// WithRules overrides the target language's formatting rules.
func WithRules(rules FormatRules) Option {
	return func(p *Pipeline) {
		p.rules = rules
	}
}

// WithContext sets the content context passed to the provider.
func WithContext(ctx string) Option {
	return func(p *Pipeline) {
		p.context = ctx
	}
}

// WithSimplifier enables the script simplification stage. Without one, the
// pipeline skips from Translating straight through Simplifying untouched.
func WithSimplifier(s *Simplifier) Option {
	return func(p *Pipeline) {
		p.simplifier = s
	}
}

// WithLogger sets the logger (default: no logging).
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New creates a pipeline for the given target language, terminology store
// and translation provider.
func New(targetLang string, store dict.Store, translator Provider, opts ...Option) *Pipeline {
	targetLang = NormalizeLocale(targetLang)
	rules := RulesFor(targetLang)

	p := &Pipeline{
		targetLang: targetLang,
		sourceLang: "en_US",
		store:      store,
		translator: translator,
		pacer:      NewPacer(0),
		retry:      DefaultRetryPolicy(),
		rules:      rules,
		delimiter:  rules.Delimiter,
		log:        zerolog.Nop(),
		stage:      StageLoaded,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Stage returns the pipeline's current stage.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// Run drives file through Loaded → Translating → Simplifying → Formatting →
// Written. Per-entry failures are collected into the report and leave the
// entry's current text in place; they never abort the batch. The terminology
// dictionary is persisted before the terminal state is reached, including on
// cancellation, so a retried run never re-pays for a recorded translation.
func (p *Pipeline) Run(ctx context.Context, file *resource.File) (report *Report, err error) {
	report = &Report{Entries: file.Len()}

	defer func() {
		if perr := p.persist(); perr != nil {
			report.PersistErr = &PersistError{Message: "terminology gains not saved", Cause: perr}
			p.log.Error().Err(perr).Msg("dictionary persist failed")
			if err == nil {
				err = report.PersistErr
				return
			}
		}
		if err == nil {
			p.setStage(StageWritten)
		}
	}()

	p.setStage(StageTranslating)
	p.pacer.Start(time.Now()) // batch anchor, once per file
	if err := p.forEachEntry(ctx, file, report, p.translateEntry); err != nil {
		return report, err
	}

	p.setStage(StageSimplifying)
	if p.simplifier != nil {
		if err := p.forEachEntry(ctx, file, report, p.simplifyEntry); err != nil {
			return report, err
		}
	}

	p.setStage(StageFormatting)
	if err := p.forEachEntry(ctx, file, report, p.formatEntry); err != nil {
		return report, err
	}

	return report, nil
}

// entryFunc rewrites one entry's text within a stage.
type entryFunc func(ctx context.Context, key, text string, report *Report) (string, error)

// forEachEntry applies fn to every entry in key order. Cancellation is
// cooperative: it is checked between entries, never mid-entry. Failures are
// collected and the remaining entries still processed.
func (p *Pipeline) forEachEntry(ctx context.Context, file *resource.File, report *Report, fn entryFunc) error {
	for _, key := range file.Keys() {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		text, _ := file.Get(key)
		rewritten, err := fn(ctx, key, text, report)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.Failures = append(report.Failures, EntryFailure{Key: key, Stage: p.stage, Err: err})
			p.log.Warn().Str("key", key).Stringer("stage", p.stage).Err(err).Msg("entry failed")
			continue
		}
		file.Set(key, rewritten)
	}
	return nil
}

// translateEntry resolves one entry: dictionary lookup first, provider call
// only on a miss. A successful provider result is recorded into the
// dictionary immediately, before the entry completes.
func (p *Pipeline) translateEntry(ctx context.Context, key, text string, report *Report) (string, error) {
	term := dict.Normalize(text)
	if term == "" {
		return text, nil
	}

	canonical, ok, err := p.store.Lookup(ctx, term)
	if err != nil {
		return "", fmt.Errorf("dictionary lookup: %w", err)
	}
	if ok {
		report.FromDictionary++
		return canonical, nil
	}

	glossary := p.glossary()

	translated, err := Retry(ctx, p.retry, p.pacer, func() (string, error) {
		return p.translator.Translate(ctx, Request{
			Text:       text,
			SourceLang: p.sourceLang,
			TargetLang: p.targetLang,
			Glossary:   glossary,
			Context:    p.context,
		})
	})
	if err != nil {
		return "", err
	}

	// Enforce canonical renderings over the fresh output before recording it,
	// so the dictionary never learns a rendering that disagrees with itself.
	translated = applyGlossary(translated, glossary)

	recorded, conflict, err := p.store.Record(ctx, term, translated)
	if err != nil {
		return "", fmt.Errorf("dictionary record: %w", err)
	}
	if conflict {
		report.Conflicts = append(report.Conflicts, dict.Conflict{
			Term:      term,
			Canonical: recorded,
			Rejected:  translated,
		})
		p.log.Warn().
			Str("term", term).
			Str("kept", recorded).
			Str("rejected", translated).
			Msg("dictionary conflict, stored rendering wins")
	}

	report.Translated++
	return recorded, nil
}

// simplifyEntry rewrites logographic spans to kana.
func (p *Pipeline) simplifyEntry(_ context.Context, _ string, text string, _ *Report) (string, error) {
	return p.simplifier.Simplify(text, p.delimiter), nil
}

// formatEntry inserts line-break escapes at sentence boundaries.
func (p *Pipeline) formatEntry(_ context.Context, _ string, text string, _ *Report) (string, error) {
	return FormatBreaks(text, p.rules), nil
}

// glossary returns the dictionary's current terms when the store can
// enumerate them. The dictionary stays the single source of truth; this is a
// point-in-time view handed to the provider, never a cache of decisions.
func (p *Pipeline) glossary() map[string]string {
	if snap, ok := p.store.(dict.Snapshotter); ok {
		return snap.Snapshot()
	}
	return nil
}

// applyGlossary replaces occurrences of known terms in text with their
// canonical renderings. Longer terms are applied first so a short term never
// clobbers part of a longer one.
func applyGlossary(text string, glossary map[string]string) string {
	if len(glossary) == 0 {
		return text
	}

	terms := make([]string, 0, len(glossary))
	for term, rendering := range glossary {
		if term != rendering && term != "" {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	for _, term := range terms {
		text = strings.ReplaceAll(text, term, glossary[term])
	}
	return text
}

func (p *Pipeline) persist() error {
	if per, ok := p.store.(dict.Persister); ok {
		return per.Persist()
	}
	return nil
}

func (p *Pipeline) setStage(s Stage) {
	p.stage = s
	p.log.Debug().Stringer("stage", s).Msg("stage transition")
}
