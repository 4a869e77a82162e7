package utils

import "strings"

// Server side strings only: titles for API errors and the health probe.
// Form content carries its own translations.
var translations = map[string]map[string]string{
	"EN": {
		"health.ok":          "ok",
		"error.invalid":      "The request is invalid",
		"error.forbidden":    "You do not have access to this form",
		"error.not_found":    "Not found",
		"error.conflict":     "The form was changed or is in the wrong state",
		"error.unauthorized": "Sign in to edit forms",
		"error.unpublished":  "The form has validation issues",
		"error.internal":     "Something went wrong",
	},
	"RO": {
		"health.ok":          "ok",
		"error.invalid":      "Cererea nu este validă",
		"error.forbidden":    "Nu aveți acces la acest formular",
		"error.not_found":    "Nu a fost găsit",
		"error.conflict":     "Formularul a fost modificat sau este într-o stare greșită",
		"error.unauthorized": "Autentificați-vă pentru a edita formulare",
		"error.unpublished":  "Formularul are probleme de validare",
		"error.internal":     "A apărut o eroare",
	},
}

// T returns the translated string for key in lang; falls back to English.
func T(lang, key string) string {
	if m, ok := translations[strings.ToUpper(lang)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["EN"][key]; ok {
		return v
	}
	return key
}
