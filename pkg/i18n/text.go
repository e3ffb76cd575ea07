package i18n

import (
	"maps"
	"slices"
)

// Text is a value translated per language code, stored alongside data
// rather than in a Bundle.
type Text map[string]string

// In returns the translation for lang, falling back to English and then to
// the first non-empty translation by language code.
func (t Text) In(lang string) string {
	if s := t[lang]; s != "" {
		return s
	}
	if s := t["en"]; s != "" {
		return s
	}
	for _, k := range slices.Sorted(maps.Keys(t)) {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}
