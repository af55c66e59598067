package kotoba

import "strings"

// FormatBreaks inserts the platform's in-string newline escape sequence
// after every occurrence of the sentence-terminating punctuation mark.
//
// No escape is inserted when the character immediately following the mark is
// a double quote: the sentence is closing a quoted clause and should not be
// split. A mark at the very end of the string gets the escape normally.
// Escapes already present are not duplicated, so the operation is idempotent.
func FormatBreaks(text string, rules FormatRules) string {
	if rules.LineBreak == "" || rules.SentenceEnd == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for i, r := range text {
		b.WriteRune(r)
		if r != rules.SentenceEnd {
			continue
		}

		rest := text[i+len(string(r)):]
		if strings.HasPrefix(rest, `"`) {
			continue
		}
		if strings.HasPrefix(rest, rules.LineBreak) {
			continue
		}
		b.WriteString(rules.LineBreak)
	}

	return b.String()
}
