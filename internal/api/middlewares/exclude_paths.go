package middlewares

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// MiddlewaresExcludePaths applies mw to every request except those whose path
// starts with one of the excluded prefixes (login, signup and other routes
// that must work without a session).
func MiddlewaresExcludePaths(mw Middleware, excluded ...string) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excluded {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
