package httpx

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the shared API key.
const APIKeyHeader = "Api-Key"

// APIKeyMiddleware rejects requests without the configured key. An empty key
// disables the check.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid API key", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
