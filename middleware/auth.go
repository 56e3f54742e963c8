package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"tunevault/internal/auth"
)

// protectedPrefixes is the static allowlist of path prefixes that require a
// verified bearer token. Any path not matching one of these is served
// without authentication; the default is open, not closed.
var protectedPrefixes = []string{
	"/api/tracks",
	"/api/stream/",
	"/api/cover/",
	"/api/event",
	"/api/admin/",
}

// Middleware bundles the HTTP middleware with its collaborators
type Middleware struct {
	Tokens *auth.Service
}

// NewMiddleware creates the middleware set
func NewMiddleware(tokens *auth.Service) *Middleware {
	return &Middleware{Tokens: tokens}
}

// RequiresAuth reports whether the given path falls under a protected prefix
func RequiresAuth(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AccessGate authenticates requests to protected paths. On success the
// verified claims are stored in the request context for downstream handlers.
func (m *Middleware) AccessGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !RequiresAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr, ok := BearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := m.Tokens.Verify(tokenStr)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
	})
}

// RequireAdmin wraps a handler that only admins may call. It assumes the
// access gate already ran; a request without claims is rejected outright.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !claims.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// BearerToken extracts the token from an Authorization: Bearer header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len(prefix):])
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
