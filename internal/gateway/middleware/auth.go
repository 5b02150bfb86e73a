package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/elimu/instructor-backend/internal/modules/auth/domain"
)

type contextKey string

const ContextKeyIdentity contextKey = "identity"

// Authenticator resolves a bearer token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

type AuthMiddleWare struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleWare {
	return &AuthMiddleWare{auth: auth}
}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(domain.Identity)
	return identity, ok && identity.UserID != ""
}

type authError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(authError{Message: message, StatusCode: http.StatusUnauthorized})
}

// bearerToken returns the token of a header shaped exactly "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid Authorization bearer token and stores the
// caller's identity in the request context.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Authorization header missing")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			unauthorized(w, "Invalid Authorization header format")
			return
		}
		m.serve(w, r, token, next)
	})
}

// RequireSocketAuth is RequireAuth for websocket upgrades, which may carry the token
// in the token query parameter since browsers cannot set headers on the handshake.
func (m *AuthMiddleWare) RequireSocketAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			m.RequireAuth(next).ServeHTTP(w, r)
			return
		}
		token := r.URL.Query().Get("token")
		if token == "" {
			unauthorized(w, "Authorization header missing")
			return
		}
		m.serve(w, r, token, next)
	})
}

func (m *AuthMiddleWare) serve(w http.ResponseWriter, r *http.Request, token string, next http.Handler) {
	identity, err := m.auth.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			unauthorized(w, "Invalid or expired token")
		} else {
			unauthorized(w, "Token validation failed")
		}
		return
	}
	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
}
