package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "http_requests_total",
		Help:      "Requests served, by portal area, route and status.",
	}, []string{"area", "method", "route", "status"})

	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Name:      "http_request_duration_seconds",
		Help:      "Request latency by portal area.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"area", "method"})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "portal",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})

	guardDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions by layer and outcome.",
	}, []string{"layer", "outcome"})
)

// Metrics counts and times every request. Routes are labelled by their chi pattern so ids
// never reach a label; anything the router did not match is "unmatched".
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inFlight.Inc()
		defer inFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		area := areaOf(r.URL.Path)

		requestsTotal.WithLabelValues(area, r.Method, route, strconv.Itoa(status)).Inc()
		requestSeconds.WithLabelValues(area, r.Method).Observe(time.Since(start).Seconds())
	})
}

// areaOf maps a path to the portal section it belongs to.
func areaOf(path string) string {
	seg := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	switch seg {
	case "api", "auth", "patient", "doctor", "assistant", "admin", "static":
		return seg
	case "healthz", "readyz", "metrics":
		return "probe"
	default:
		return "public"
	}
}
