package utils

import (
	"sort"
	"strconv"
	"strings"
)

// DetermineLanguage picks the active language from an explicit query value,
// then the Accept-Language header, then def, then the first supported code.
// Codes are compared case-insensitively and returned upper-case ("EN", "RO").
// Region subtags are dropped, so "ro-MD" matches "RO".
func DetermineLanguage(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	pick := func(lang string) (string, bool) {
		l := strings.ToUpper(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if i := strings.IndexAny(l, "-_"); i > 0 {
			if _, ok := sup[l[:i]]; ok {
				return l[:i], true
			}
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}

	type cand struct {
		lang string
		q    float64
	}
	var cands []cand
	for _, part := range strings.Split(acceptLang, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		lang, q := p, 1.0
		if semi := strings.Index(p, ";"); semi >= 0 {
			lang = strings.TrimSpace(p[:semi])
			q = parseQuality(p[semi+1:])
		}
		if q <= 0 {
			continue
		}
		if l, ok := pick(lang); ok {
			cands = append(cands, cand{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		return cands[0].lang
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToUpper(strings.TrimSpace(supported[0]))
	}
	return strings.ToUpper(def)
}

// parseQuality reads "q=0.8" from the parameter list of one Accept-Language
// entry. Missing or malformed values count as 1.
func parseQuality(params string) float64 {
	for _, kv := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || q > 1 {
			return 1
		}
		return q
	}
	return 1
}
