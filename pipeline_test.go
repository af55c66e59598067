package kotoba

import (
	"context"
	"reflect"
	"testing"

	"github.com/kotonoha-dev/kotoba/dict"
	"github.com/kotonoha-dev/kotoba/resource"
)

// fakeProvider is a minimal in-package test double. The exported mock lives
// in the provider package; tests there exercise it.
type fakeProvider struct {
	translations map[string]string
	errs         map[string]error
	calls        int
}

func (f *fakeProvider) Translate(_ context.Context, req Request) (string, error) {
	f.calls++
	if err, ok := f.errs[req.Text]; ok {
		return "", err
	}
	if out, ok := f.translations[req.Text]; ok {
		return out, nil
	}
	return "[" + req.Text + "]", nil
}

func newTestPipeline(t *testing.T, store dict.Store, p Provider, opts ...Option) *Pipeline {
	t.Helper()
	// No simplifier: loading the morphological dictionary is exercised in
	// the simplifier tests and the integration test.
	return New("ja_JP", store, p, opts...)
}

func fileFrom(pairs [][2]string) *resource.File {
	f := resource.New()
	for _, kv := range pairs {
		f.Set(kv[0], kv[1])
	}
	return f
}

func TestPipeline_KeyPreservation(t *testing.T) {
	store := dict.NewMemoryStore(nil)
	pipe := newTestPipeline(t, store, &fakeProvider{})

	file := fileFrom([][2]string{
		{"item.copper_axe", "Copper Axe"},
		{"item.pokeball", "Pokeball"},
		{"dialog.greeting", "Hello!"},
	})
	wantKeys := file.Keys()

	report, err := pipe.Run(context.Background(), file)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(file.Keys(), wantKeys) {
		t.Errorf("Key set changed: got %v, want %v", file.Keys(), wantKeys)
	}
	if report.Entries != 3 || report.Translated != 3 {
		t.Errorf("Report = %+v, want 3 entries all translated", report)
	}
	if pipe.Stage() != StageWritten {
		t.Errorf("Stage = %v, want written", pipe.Stage())
	}
}

func TestPipeline_DictionaryShortCircuitsProvider(t *testing.T) {
	store := dict.NewMemoryStore(map[string]string{"Copper Axe": "銅の斧"})
	fake := &fakeProvider{}
	pipe := newTestPipeline(t, store, fake)

	file := fileFrom([][2]string{{"item.copper_axe", "Copper Axe"}})

	report, err := pipe.Run(context.Background(), file)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if fake.calls != 0 {
		t.Errorf("Provider called %d times, want 0", fake.calls)
	}
	if report.FromDictionary != 1 {
		t.Errorf("FromDictionary = %d, want 1", report.FromDictionary)
	}
	if got, _ := file.Get("item.copper_axe"); got != `銅の斧\n` && got != "銅の斧" {
		// Formatting only appends an escape when the text ends in the
		// sentence mark; an item name stays as the dictionary rendering.
		t.Errorf("Entry = %q, want dictionary rendering", got)
	}
}

func TestPipeline_ConsistencyAcrossEntries(t *testing.T) {
	store := dict.NewMemoryStore(nil)
	fake := &fakeProvider{translations: map[string]string{"Owner": "持ち主"}}
	pipe := newTestPipeline(t, store, fake)

	file := fileFrom([][2]string{
		{"tooltip.owner", "Owner"},
		{"screen.owner", "Owner"},
	})

	if _, err := pipe.Run(context.Background(), file); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	a, _ := file.Get("tooltip.owner")
	b, _ := file.Get("screen.owner")
	if a != b {
		t.Errorf("Same source rendered differently: %q vs %q", a, b)
	}
	if fake.calls != 1 {
		t.Errorf("Provider called %d times for one unique source, want 1", fake.calls)
	}
}

func TestPipeline_TerminologyEnforcement(t *testing.T) {
	// The dictionary already fixed the rendering of 所有者; fresh provider
	// output using it must be rewritten to the canonical rendering.
	store := dict.NewMemoryStore(map[string]string{"所有者": "持ち主"})
	fake := &fakeProvider{translations: map[string]string{
		"About the owner": "所有者について",
	}}
	pipe := newTestPipeline(t, store, fake)

	file := fileFrom([][2]string{{"info.owner", "About the owner"}})

	if _, err := pipe.Run(context.Background(), file); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, _ := file.Get("info.owner")
	if got != "持ち主について" {
		t.Errorf("Entry = %q, want canonical term 持ち主", got)
	}
}

func TestPipeline_PartialFailure(t *testing.T) {
	store := dict.NewMemoryStore(nil)
	fake := &fakeProvider{
		translations: map[string]string{"Hello!": "やあ！"},
		errs: map[string]error{
			"Broken": &ProviderError{Message: "boom", Retryable: false},
		},
	}
	pipe := newTestPipeline(t, store, fake)

	file := fileFrom([][2]string{
		{"dialog.greeting", "Hello!"},
		{"dialog.broken", "Broken"},
		{"item.pokeball", "Pokeball"},
	})

	report, err := pipe.Run(context.Background(), file)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(report.Failures))
	}
	if report.Failures[0].Key != "dialog.broken" {
		t.Errorf("Failed key = %q, want dialog.broken", report.Failures[0].Key)
	}
	if report.Failures[0].Stage != StageTranslating {
		t.Errorf("Failed stage = %v, want translating", report.Failures[0].Stage)
	}

	// The failed entry keeps its source text, never dropped.
	if got, _ := file.Get("dialog.broken"); got != "Broken" {
		t.Errorf("Failed entry = %q, want original source text", got)
	}
	// The remaining entries are still localized.
	if got, _ := file.Get("dialog.greeting"); got == "Hello!" {
		t.Error("Entry after a failure was not translated")
	}
	if pipe.Stage() != StageWritten {
		t.Errorf("Stage = %v, want written despite per-entry failure", pipe.Stage())
	}
}

func TestPipeline_RetriesTransientFailures(t *testing.T) {
	store := dict.NewMemoryStore(nil)
	attempts := 0
	flaky := providerFunc(func(_ context.Context, req Request) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &ProviderError{Message: "transient", Retryable: true}
		}
		return "やあ！", nil
	})
	pipe := newTestPipeline(t, store, flaky, WithRetryPolicy(RetryPolicy{MaxAttempts: 3}))

	file := fileFrom([][2]string{{"dialog.greeting", "Hello!"}})

	report, err := pipe.Run(context.Background(), file)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %v, want none", report.Failures)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3", attempts)
	}
}

type providerFunc func(ctx context.Context, req Request) (string, error)

func (f providerFunc) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func TestPipeline_CancellationBetweenEntries(t *testing.T) {
	store := dict.NewMemoryStore(nil)

	ctx, cancel := context.WithCancel(context.Background())
	processed := 0
	p := providerFunc(func(_ context.Context, req Request) (string, error) {
		processed++
		if processed == 1 {
			cancel() // abandon the run after the current entry
		}
		return "[" + req.Text + "]", nil
	})
	pipe := newTestPipeline(t, store, p)

	file := fileFrom([][2]string{
		{"a", "one"},
		{"b", "two"},
		{"c", "three"},
	})

	_, err := pipe.Run(ctx, file)
	if err == nil {
		t.Fatal("Expected cancellation error")
	}

	// The current entry completed and was recorded; no further entries ran.
	if processed != 1 {
		t.Errorf("Processed %d entries after cancel, want 1", processed)
	}
	if _, ok, _ := store.Lookup(context.Background(), "one"); !ok {
		t.Error("Completed entry missing from dictionary after cancellation")
	}
	if _, ok, _ := store.Lookup(context.Background(), "two"); ok {
		t.Error("Unprocessed entry present in dictionary after cancellation")
	}
	if pipe.Stage() == StageWritten {
		t.Error("Cancelled run must not reach the written state")
	}
}

func TestPipeline_RecordsFreshTranslations(t *testing.T) {
	store := dict.NewMemoryStore(nil)
	fake := &fakeProvider{translations: map[string]string{"Owner": "持ち主"}}
	pipe := newTestPipeline(t, store, fake)

	file := fileFrom([][2]string{{"tooltip.owner", "Owner"}})

	if _, err := pipe.Run(context.Background(), file); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rendering, ok, _ := store.Lookup(context.Background(), "Owner")
	if !ok || rendering != "持ち主" {
		t.Errorf("Dictionary entry = %q (ok=%v), want 持ち主", rendering, ok)
	}
}

func TestApplyGlossary(t *testing.T) {
	glossary := map[string]string{
		"所有者": "持ち主",
		"ボール": "モンスターボール",
		"同じ":  "同じ", // identity mappings are skipped
	}

	tests := []struct {
		in   string
		want string
	}{
		{"所有者について", "持ち主について"},
		{"所有者と所有者", "持ち主と持ち主"},
		{"関係なし", "関係なし"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := applyGlossary(tt.in, glossary); got != tt.want {
			t.Errorf("applyGlossary(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyGlossary_LongestTermFirst(t *testing.T) {
	glossary := map[string]string{
		"Pokeball":        "ボール",
		"Master Pokeball": "マスターボール",
	}

	got := applyGlossary("Master Pokeball", glossary)
	if got != "マスターボール" {
		t.Errorf("applyGlossary = %q, want the longer term applied first", got)
	}
}
