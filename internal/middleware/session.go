package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"family-memories/internal/token"
	"family-memories/pkg/apierror"
)

// sessionReader is the slice of the session store this middleware needs.
type sessionReader interface {
	Read(r *http.Request) (token.Claims, bool)
}

type contextKey string

const sessionContextKey contextKey = "session_claims"

// SessionMiddleware is the central auth gate: routes declare whether they
// need identity by sitting behind Require, instead of each handler
// re-implementing the cookie check.
type SessionMiddleware struct {
	sessions sessionReader
}

func NewSessionMiddleware(sessions sessionReader) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Require rejects the request with 401 unless a valid session cookie is
// present; on success the claims ride along in the context.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.sessions.Read(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(apierror.New(
				"UNAUTHORIZED", "you need to be signed in", "", http.StatusUnauthorized))
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(sessionContextKey).(token.Claims)
	return claims, ok
}
