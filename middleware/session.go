package middleware

import (
	"net/http"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/reqctx"
)

// SessionResolver is the read side of session.Manager.
type SessionResolver interface {
	Resolve(r *http.Request) (domain.Session, bool)
}

// Session places the read-only session of the request (if any) into the context.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := resolver.Resolve(r); ok {
				r = r.WithContext(reqctx.WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession answers 401 to JSON callers without a session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := reqctx.GetSession(r.Context()); !ok {
			writeFailure(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
