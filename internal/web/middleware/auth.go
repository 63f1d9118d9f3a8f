package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity describes an authenticated editor.
type Identity struct {
	Username string
	Role     string
}

// Verifier resolves a bearer token to an identity. Token issuance
// lives with the account service; this process only verifies.
type Verifier interface {
	Verify(token string) (*Identity, bool)
}

// StaticVerifier accepts a fixed token-to-identity table. Used for
// single-operator deployments and tests.
type StaticVerifier struct {
	Tokens map[string]Identity
}

func (v *StaticVerifier) Verify(token string) (*Identity, bool) {
	id, ok := v.Tokens[token]
	if !ok {
		return nil, false
	}
	return &id, true
}

// RequireAuth is middleware that requires a valid bearer token.
func RequireAuth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			identity, ok := verifier.Verify(token)
			if token == "" || !ok {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom retrieves the authenticated identity from the request context.
func IdentityFrom(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithIdentity adds an identity to the context.
// This is primarily for testing - use RequireAuth middleware in production.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
