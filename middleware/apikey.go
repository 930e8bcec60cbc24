package middleware

import (
	"lyricsync-go/logcolors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// APIKeyMiddleware gates requests on the X-API-Key header. With required
// false everything passes through. A required-but-unset key is treated
// as a misconfiguration: it logs and allows. Public paths bypass the
// check; a trailing * makes a path a prefix match.
func APIKeyMiddleware(apiKey string, required bool, publicPaths []string) func(http.Handler) http.Handler {
	publicPathMap := make(map[string]bool, len(publicPaths))
	for _, path := range publicPaths {
		publicPathMap[path] = true
	}

	isPublic := func(path string) bool {
		if publicPathMap[path] {
			return true
		}
		for publicPath := range publicPathMap {
			if strings.HasSuffix(publicPath, "*") &&
				strings.HasPrefix(path, strings.TrimSuffix(publicPath, "*")) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey == "" {
				log.Warnf("%s API key required but not configured, allowing request", logcolors.LogAPIKey)
				next.ServeHTTP(w, r)
				return
			}

			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get("X-API-Key")
			switch {
			case providedKey == "":
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"API key required","message":"Provide a valid API key via X-API-Key header"}`))
			case providedKey != apiKey:
				log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid API key","message":"The provided API key is not valid"}`))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
