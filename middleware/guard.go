package middleware

import (
	"net/http"
	"strings"

	"github.com/baechuer/careportal/internal/audit"
	"github.com/baechuer/careportal/internal/guard"
	"github.com/baechuer/careportal/internal/reqctx"
)

// RouteGuard is the edge check for page navigations. It runs after Session and turns a
// non-allow decision into a 302.
func RouteGuard(p *guard.Policy, auditLog *audit.Logger) func(http.Handler) http.Handler {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := reqctx.GetSession(r.Context())
			d := p.DecideURL(r.URL, sess)
			guardDecisionsTotal.WithLabelValues("edge", d.Outcome.String()).Inc()

			if d.Outcome == guard.Allow {
				next.ServeHTTP(w, r)
				return
			}
			if d.Outcome == guard.RedirectUnauthorized {
				auditLog.AccessDenied(r.Context(), r.URL.Path, string(sess.Role), d.Outcome.String())
			}
			http.Redirect(w, r, d.Location, http.StatusFound)
		})
	}
}

// APIGuard applies the same table to /api/<prefix> calls, answering 401 or 403 envelopes
// instead of redirects. The path is cleaned first, so /api/x/../admin is judged as /admin.
func APIGuard(p *guard.Policy, auditLog *audit.Logger) func(http.Handler) http.Handler {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimPrefix(guard.CleanPath(r.URL.Path), "/api")
			rule, ok := p.Match(path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sess, authed := reqctx.GetSession(r.Context())
			switch {
			case !authed:
				guardDecisionsTotal.WithLabelValues("api", guard.RedirectLogin.String()).Inc()
				writeFailure(w, r, http.StatusUnauthorized, "authentication required")
			case !rule.Allows(sess.Role):
				guardDecisionsTotal.WithLabelValues("api", guard.RedirectUnauthorized.String()).Inc()
				auditLog.AccessDenied(r.Context(), r.URL.Path, string(sess.Role), "forbidden")
				writeFailure(w, r, http.StatusForbidden, "you do not have access to this resource")
			default:
				guardDecisionsTotal.WithLabelValues("api", guard.Allow.String()).Inc()
				next.ServeHTTP(w, r)
			}
		})
	}
}
