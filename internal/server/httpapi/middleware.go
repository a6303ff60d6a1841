package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/DeepaPrasanna/social-media/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// guard authenticates the Bearer access token and rejects revoked or
// otherwise invalid credentials with a bare 401. On success the verified
// claims ride on the request context.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFrom returns the claims the guard stored on the context. It is
// only ever called from guarded handlers.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
