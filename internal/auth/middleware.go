package auth

import (
	"context"
	"net/http"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Middleware resolves the caller once per request and stashes the
// result in the context. It never rejects; handlers decide what an
// anonymous caller may do.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := resolver.Resolve(r); id != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityContextKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity returns the resolved caller, or nil for anonymous.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}
