package auth

import (
	"log/slog"
	"net/http"
)

// RequireAPIKey wraps next so requests must carry key in header. An empty key
// returns next unchanged.
func RequireAPIKey(header, key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !equal(r.Header.Get(header), key) {
			slog.Warn("auth: rejected request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid api key"}` + "\n")) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}
