package kotoba

import "strings"

// FormatRules describe how display text is finished for one target language:
// the sentence-terminating punctuation mark, the literal escape sequence the
// platform renders as an in-string line break, and the default separator
// between phonetic segments.
type FormatRules struct {
	SentenceEnd rune   // Sentence-terminating punctuation mark
	LineBreak   string // Literal in-string newline escape sequence
	Delimiter   string // Default separator between phonetic segments
}

// formatRules maps base language codes to their formatting rules.
var formatRules = map[string]FormatRules{
	"ja": {SentenceEnd: '。', LineBreak: `\n`, Delimiter: " "},
	"zh": {SentenceEnd: '。', LineBreak: `\n`, Delimiter: " "},
	"ko": {SentenceEnd: '.', LineBreak: `\n`, Delimiter: " "},
	"en": {SentenceEnd: '.', LineBreak: `\n`, Delimiter: " "},
}

// RulesFor returns the formatting rules for a language code. Unknown
// languages fall back to the English rules.
func RulesFor(langCode string) FormatRules {
	if rules, ok := formatRules[baseLang(langCode)]; ok {
		return rules
	}
	return formatRules["en"]
}

// LanguageNames maps locale codes to human-readable names for provider prompts.
var LanguageNames = map[string]string{
	"en_US": "English (United States)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"ko_KR": "Korean (South Korea)",
	"pt_BR": "Portuguese (Brazil)",
	"ru_RU": "Russian (Russia)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
}

// shortCodeToLocale maps short language codes to full locale codes.
var shortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"pt": "pt_BR",
	"ru": "ru_RU",
	"zh": "zh_CN",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	if locale, ok := shortCodeToLocale[langCode]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// NormalizeLocale converts a language code to the standard format
// (e.g., "ja-JP" → "ja_JP").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// baseLang extracts the lowercase base language code (e.g., "ja" from "ja_JP").
func baseLang(langCode string) string {
	parts := strings.Split(NormalizeLocale(langCode), "_")
	return strings.ToLower(parts[0])
}
