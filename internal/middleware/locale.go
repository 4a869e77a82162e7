package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/Synform/internal/utils"
)

type ctxKey int

const languageKey ctxKey = 1

// Language resolves the active editing language from the lang query
// parameter or Accept-Language, limited to the supported codes, and stores
// it in the request context.
func Language(supported []string, def string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := utils.DetermineLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), supported, def)
			ctx := context.WithValue(r.Context(), languageKey, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LanguageFromContext returns the language stored by Language, or "" when
// the middleware did not run.
func LanguageFromContext(ctx context.Context) string {
	if v := ctx.Value(languageKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
