package filters

import (
	"strings"
	"unicode"
)

// Language is the detected dominant language of a query: Croatian vs.
// English keyword hits are counted, mixed when both appear.
type Language string

const (
	LanguageCroatian Language = "hr"
	LanguageEnglish  Language = "en"
	LanguageMixed    Language = "mixed"
	LanguageUnknown  Language = "unknown"
)

// DetectLanguage counts keyword hits from the fixed Croatian/English tables
// and returns the dominant language.
func DetectLanguage(query string) Language {
	lower := strings.ToLower(query)

	hrHits := countHits(lower, croatianKeywords)
	enHits := countHits(lower, englishKeywords)

	switch {
	case hrHits > 0 && enHits > 0:
		return LanguageMixed
	case hrHits > 0:
		return LanguageCroatian
	case enHits > 0:
		return LanguageEnglish
	default:
		return LanguageUnknown
	}
}

// countHits counts keywords that occur as whole words in lower.
func countHits(lower string, keywords []string) int {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = true
	}
	n := 0
	for _, kw := range keywords {
		if words[kw] {
			n++
		}
	}
	return n
}
