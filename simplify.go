package kotoba

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Simplifier rewrites logographic (kanji) spans into their phonetic kana
// rendering using morphological segmentation. Converted units are separated
// from their surroundings by a caller-supplied delimiter; everything else
// (already-phonetic text, punctuation, digits, escape sequences) passes
// through unchanged.
type Simplifier struct {
	tok *tokenizer.Tokenizer
}

// NewSimplifier creates a simplifier backed by the IPA morphological
// dictionary. Construction is expensive; build one and share it.
func NewSimplifier() (*Simplifier, error) {
	tok, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Simplifier{tok: tok}, nil
}

// Simplify converts every logographic span of text to its phonetic reading.
// Text without logographic spans is returned unchanged, which makes the
// operation idempotent: simplified output contains no logographic characters
// and a second pass is a no-op.
func (s *Simplifier) Simplify(text, delimiter string) string {
	if !ContainsLogographic(text) {
		return text
	}

	tokens := s.tok.Tokenize(text)
	var b strings.Builder
	b.Grow(len(text))

	for i, tk := range tokens {
		surface := tk.Surface
		if !ContainsLogographic(surface) {
			b.WriteString(surface)
			continue
		}

		reading, ok := tk.Reading()
		if !ok || reading == "" || reading == "*" {
			// Out-of-vocabulary token with no reading, keep the surface form.
			b.WriteString(surface)
			continue
		}

		out := b.String()
		if delimiter != "" && out != "" && !strings.HasSuffix(out, delimiter) {
			b.WriteString(delimiter)
		}
		b.WriteString(katakanaToHiragana(reading))
		if delimiter != "" && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1].Surface, delimiter) {
			b.WriteString(delimiter)
		}
	}

	return b.String()
}

// ContainsLogographic reports whether text contains any Han characters.
func ContainsLogographic(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// katakanaToHiragana converts katakana readings to hiragana. The prolonged
// sound mark and anything outside the katakana block are kept as is.
func katakanaToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'ァ' && r <= 'ヶ' {
			r -= 'ァ' - 'ぁ'
		}
		b.WriteRune(r)
	}
	return b.String()
}
