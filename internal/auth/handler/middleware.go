package handler

import (
	"context"
	"net/http"
	"strings"

	"hrms-platform/backend/internal/security"
)

// TokenVerifier verifies an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*security.AccessClaims, error)
}

type claimsKey struct{}

// ClaimsFromContext returns the verified access claims stored by
// RequireAccessToken, or nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *security.AccessClaims {
	claims, _ := ctx.Value(claimsKey{}).(*security.AccessClaims)
	return claims
}

// RequireAccessToken verifies the Bearer access token and stores its claims
// in the request context. Missing or invalid tokens get 401.
func RequireAccessToken(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
			return
		}
		claims, err := verifier.VerifyAccess(strings.TrimSpace(auth[len(prefix):]))
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}
