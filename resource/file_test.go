package resource

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodePreservesOrder(t *testing.T) {
	input := `{
  "item.copper_axe": "Copper Axe",
  "block.ruby_ore": "Ruby Ore",
  "entity.owner": "Owner"
}`

	f, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{"item.copper_axe", "block.ruby_ore", "entity.owner"}
	got := f.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if v, ok := f.Get("block.ruby_ore"); !ok || v != "Ruby Ore" {
		t.Errorf("Get(block.ruby_ore) = %q, %v", v, ok)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not JSON", `not json at all`},
		{"array", `["a", "b"]`},
		{"bare string", `"hello"`},
		{"nested object value", `{"key": {"nested": "value"}}`},
		{"numeric value", `{"key": 42}`},
		{"null value", `{"key": null}`},
		{"truncated", `{"key": "value"`},
		{"trailing content", `{"key": "value"} extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Decode() succeeded on malformed input")
			}
			var merr *MalformedError
			if !errors.As(err, &merr) {
				t.Errorf("Decode() error = %T, want *MalformedError", err)
			}
		})
	}
}

func TestEncodeOrderAndEscaping(t *testing.T) {
	f := New()
	f.Set("entity.owner", "持ち主")
	f.Set("dialogue.greeting", "こんにちは。\\nようこそ！")
	f.Set("item.arrow", "<Arrow> & Co.")

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()

	if strings.Index(out, "entity.owner") > strings.Index(out, "dialogue.greeting") {
		t.Error("Encode() did not preserve insertion order")
	}
	if !strings.Contains(out, `持`) {
		t.Error("Encode() escaped non-ASCII text")
	}
	if !strings.Contains(out, `<`) || !strings.Contains(out, `&`) {
		t.Error("Encode() HTML-escaped values")
	}
	if !strings.Contains(out, `\\n`) {
		t.Error("Encode() did not keep the literal escape sequence")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := New()
	f.Set("z.last", "zzz")
	f.Set("a.first", "aaa")
	f.Set("m.middle", "line one\\nline two")

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantKeys := f.Keys()
	gotKeys := decoded.Keys()
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Errorf("round-trip key order changed: got %v, want %v", gotKeys, wantKeys)
			break
		}
	}
	for _, key := range wantKeys {
		want, _ := f.Get(key)
		got, _ := decoded.Get(key)
		if got != want {
			t.Errorf("round-trip value for %q = %q, want %q", key, got, want)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if buf.String() != "{}\n" {
		t.Errorf("Encode() empty = %q, want %q", buf.String(), "{}\n")
	}
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	f := New()
	f.Set("a", "1")
	f.Set("b", "2")
	f.Set("a", "updated")

	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	if f.Keys()[0] != "a" {
		t.Error("overwriting a key changed its position")
	}
	if v, _ := f.Get("a"); v != "updated" {
		t.Errorf("Get(a) = %q, want %q", v, "updated")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := New()
	f.Set("a", "1")

	clone := f.Clone()
	clone.Set("a", "mutated")
	clone.Set("b", "2")

	if v, _ := f.Get("a"); v != "1" {
		t.Error("mutating the clone changed the original")
	}
	if f.Has("b") {
		t.Error("mutating the clone added keys to the original")
	}
}

func TestLoadSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ja_jp.json")

	f := New()
	f.Set("entity.owner", "持ち主")
	if err := f.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if v, ok := loaded.Get("entity.owner"); !ok || v != "持ち主" {
		t.Errorf("LoadFile() entity.owner = %q, %v", v, ok)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadFile() succeeded on a missing file")
	}
}
