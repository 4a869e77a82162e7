// Package forms holds the multilingual form schema, its validation rules and the
// display-logic evaluator that decides which questions are shown for a set of answers.
package forms

import (
	"encoding/json"
	"strings"
)

// TranslatedText maps an uppercase two-letter language code to a string.
// Values are treated as immutable: every helper returns a new map.
type TranslatedText map[string]string

// NormalizeLanguageCode trims and upper-cases a language code ("en " -> "EN").
func NormalizeLanguageCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidLanguageCode reports whether code is two ASCII letters (any case).
func IsValidLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// NewTranslatedText returns a value with an entry for every language, each set to seed.
func NewTranslatedText(languages []string, seed string) TranslatedText {
	out := make(TranslatedText, len(languages))
	for _, lang := range languages {
		out[NormalizeLanguageCode(lang)] = seed
	}
	return out
}

// NewTranslatedTextFor is NewTranslatedText with value stored for code and
// empty strings everywhere else.
func NewTranslatedTextFor(languages []string, code, value string) TranslatedText {
	out := NewTranslatedText(languages, "")
	out[NormalizeLanguageCode(code)] = value
	return out
}

// EnsureComplete returns a copy of t holding an entry for every language in languages.
// Missing entries are set to fill. Entries for other languages are kept.
func EnsureComplete(t TranslatedText, languages []string, fill string) TranslatedText {
	out := t.Clone()
	if out == nil {
		out = make(TranslatedText, len(languages))
	}
	for _, lang := range languages {
		code := NormalizeLanguageCode(lang)
		if _, ok := out[code]; !ok {
			out[code] = fill
		}
	}
	return out
}

// Clone returns a shallow copy; nil stays nil.
func (t TranslatedText) Clone() TranslatedText {
	if t == nil {
		return nil
	}
	out := make(TranslatedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Get returns the translation for code or fallback when t or the entry is absent.
func (t TranslatedText) Get(code, fallback string) string {
	if t == nil {
		return fallback
	}
	if v, ok := t[NormalizeLanguageCode(code)]; ok {
		return v
	}
	return fallback
}

// Has reports whether an entry (possibly empty) exists for code.
func (t TranslatedText) Has(code string) bool {
	_, ok := t[NormalizeLanguageCode(code)]
	return ok
}

// IsBlank reports whether the translation for code is missing or whitespace only.
func (t TranslatedText) IsBlank(code string) bool {
	return strings.TrimSpace(t.Get(code, "")) == ""
}

// With returns a copy of t with code set to value.
func (t TranslatedText) With(code, value string) TranslatedText {
	out := t.Clone()
	if out == nil {
		out = TranslatedText{}
	}
	out[NormalizeLanguageCode(code)] = value
	return out
}

// WithLanguageCode moves the entry stored under from to to, overwriting any existing
// entry for to. A missing from entry moves fallback. A nil receiver yields an empty map.
func (t TranslatedText) WithLanguageCode(from, to, fallback string) TranslatedText {
	if t == nil {
		return TranslatedText{}
	}
	from, to = NormalizeLanguageCode(from), NormalizeLanguageCode(to)
	out := t.Clone()
	text, ok := out[from]
	if !ok {
		text = fallback
	}
	delete(out, from)
	out[to] = text
	return out
}

// WithClonedTranslation copies the entry of from into to, keeping from.
// A nil receiver stays nil.
func (t TranslatedText) WithClonedTranslation(from, to, fallback string) TranslatedText {
	if t == nil {
		return nil
	}
	return t.With(to, t.Get(from, fallback))
}

// UnmarshalJSON upper-cases language keys. When the payload holds the same language
// twice with different casing, the uppercase key wins; otherwise the first key in
// sorted order does.
func (t *TranslatedText) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = normalizeKeys(raw)
	return nil
}

// UnmarshalYAML decodes into string values so that unquoted scalars such as
// Yes or 3 keep their literal text.
func (t *TranslatedText) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw map[string]string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*t = normalizeKeys(raw)
	return nil
}

func normalizeKeys(raw map[string]string) TranslatedText {
	if raw == nil {
		return nil
	}
	out := make(TranslatedText, len(raw))
	for _, k := range sortedKeys(raw) {
		code := NormalizeLanguageCode(k)
		if _, exists := out[code]; exists && k != code {
			continue
		}
		out[code] = raw[k]
	}
	return out
}
