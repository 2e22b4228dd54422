package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// untraced are probe and asset prefixes that would only add noise to traces.
var untraced = []string{"/healthz", "/readyz", "/metrics", "/static/"}

// Tracing opens a server span per request, named by the matched chi pattern so that
// /patient/appointments/{id}/cancel groups across ids.
func Tracing(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithSpanNameFormatter(spanName),
			otelhttp.WithFilter(func(r *http.Request) bool {
				for _, p := range untraced {
					if strings.HasPrefix(r.URL.Path, p) {
						return false
					}
				}
				return true
			}),
		)
	}
}

func spanName(_ string, r *http.Request) string {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			route = p
		}
	}
	return r.Method + " " + route
}
