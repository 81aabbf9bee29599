package server

import (
	stdhttp "net/http"
	"strings"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/constants"
)

// LocaleFilter strips a supported language prefix from the request path and
// records the locale in the request context. Canonical URLs are the
// unprefixed (English) form, so /de/memorial/x routes exactly like
// /memorial/x.
func LocaleFilter() func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			locale := constants.DefaultLocale
			if prefix, rest, ok := splitLocalePrefix(r.URL.Path); ok {
				locale = prefix
				r.URL.Path = rest
			}
			next.ServeHTTP(w, r.WithContext(auth.WithLocale(r.Context(), locale)))
		})
	}
}

func splitLocalePrefix(path string) (locale, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, remainder, _ := strings.Cut(trimmed, "/")
	if seg == constants.DefaultLocale || !constants.SupportedLocales[seg] {
		return "", "", false
	}
	if remainder == "" {
		return seg, "/", true
	}
	return seg, "/" + remainder, true
}
