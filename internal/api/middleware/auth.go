package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/edvin/equipreg/internal/api/response"
	"github.com/edvin/equipreg/internal/config"
	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/registry"
)

type contextKey string

const CallerIdentityKey contextKey = "caller_identity"

// CallerIdentity is the authenticated caller of a request.
type CallerIdentity struct {
	Name     string
	Identity model.Identity
}

// CallerLookup resolves an API key hash to a configured caller.
type CallerLookup interface {
	Lookup(keyHash string) (config.Caller, bool)
}

// Auth returns a middleware that resolves the X-API-Key header (or a Bearer
// token) to a caller identity.
func Auth(callers CallerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = extractAPIKey(r)
			}
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			caller, ok := callers.Lookup(config.HashKey(key))
			if !ok {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			identity := &CallerIdentity{Name: caller.Name, Identity: model.Identity(caller.Identity)}
			ctx := context.WithValue(r.Context(), CallerIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey returns the token of an "Authorization: Bearer" header.
func extractAPIKey(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetIdentity returns the authenticated caller, or nil outside Auth.
func GetIdentity(ctx context.Context) *CallerIdentity {
	identity, _ := ctx.Value(CallerIdentityKey).(*CallerIdentity)
	return identity
}

// GetCaller returns the caller context registry calls run under.
func GetCaller(ctx context.Context) (registry.Caller, bool) {
	identity := GetIdentity(ctx)
	if identity == nil {
		return "", false
	}
	return registry.Caller(identity.Identity), true
}

// WithIdentity stores identity in ctx as Auth does.
func WithIdentity(ctx context.Context, identity *CallerIdentity) context.Context {
	return context.WithValue(ctx, CallerIdentityKey, identity)
}
