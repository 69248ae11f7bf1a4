// internal/auth/middleware.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey struct{}

var identityContextKey = contextKey{}

// Middleware validates bearer tokens and attaches the caller's Identity to
// the request context.
type Middleware struct {
	secret string
}

// NewMiddleware creates an auth middleware verifying tokens with the given
// HS256 secret.
func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: secret}
}

// Authenticate is a chi-compatible middleware. Requests without a valid
// access token are rejected with 401 before reaching any handler.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondUnauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			respondUnauthorized(w, "Invalid authorization header format")
			return
		}

		identity, err := ValidateToken(strings.TrimSpace(parts[1]), m.secret)
		if err != nil {
			switch err {
			case ErrTokenExpired:
				respondUnauthorized(w, "Token expired")
			default:
				respondUnauthorized(w, "Invalid or malformed token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, *identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the authenticated identity from the request
// context. The boolean result is false when the request did not pass
// through the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

// ContextWithIdentity returns a context carrying the given identity.
// Intended for tests and internal callers.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
