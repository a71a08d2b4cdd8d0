package auth

import (
	"context"
	"net/http"
	"strings"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/utils"
)

type ctxIdentityKey struct{}

// Require verifies the bearer credential on every request and injects the
// verified identity into the request context. There is no unauthenticated
// data path behind this middleware.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			logger.Warn("missing_credential", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "missing credential")
			return
		}
		identity, err := g.Verify(token)
		if err != nil {
			logger.Warn("invalid_token", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxIdentityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the credential from the Authorization header, or
// from the `token` query parameter for websocket handshakes where custom
// headers are awkward for browser clients.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return r.URL.Query().Get("token")
}

// IdentityFromContext returns the verified identity or empty string.
func IdentityFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxIdentityKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
