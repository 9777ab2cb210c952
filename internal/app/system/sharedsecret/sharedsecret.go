// Package sharedsecret guards the write endpoints with a secret shared
// between this service and the platforms that call it.
package sharedsecret

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Header carries the shared secret.
const Header = "X-Questionhub-Secret"

// Middleware answers 401 unless the request's Header equals secret. An empty
// secret lets every request through.
func Middleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		want := []byte(secret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subtle.ConstantTimeCompare([]byte(r.Header.Get(Header)), want) != 1 {
				logger.Warn("request rejected: bad secret",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
