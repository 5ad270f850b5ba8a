package middleware

import (
	"net/http"
	"net/url"
)

// RequireUser sends anonymous visitors to loginPath. When enabled is false every request
// passes through.
func RequireUser(loginPath string, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := SessionFromContext(r.Context()); ok && sess.User() != nil {
				next.ServeHTTP(w, r)
				return
			}

			target := loginPath
			if r.Method == http.MethodGet && r.URL.RequestURI() != "/" {
				target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
			}
			if IsHTMXRequest(r.Context()) {
				w.Header().Set("HX-Redirect", target)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			status := http.StatusFound
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				status = http.StatusSeeOther
			}
			http.Redirect(w, r, target, status)
		})
	}
}
