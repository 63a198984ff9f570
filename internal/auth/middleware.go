package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hackgods/clinic-booking/internal/access"
)

// Middleware resolves the bearer credential on every request into an
// access.Actor on the request context. Nothing is cached between requests.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "No token, authorization denied")
				return
			}

			scheme, tokenStr, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
				unauthorized(w, "Invalid authorization header")
				return
			}

			actor, err := tokens.Verify(strings.TrimSpace(tokenStr))
			if err != nil {
				unauthorized(w, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
