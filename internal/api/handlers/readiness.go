package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"

	"github.com/baechuer/careportal/internal/format"
	"github.com/baechuer/careportal/internal/logger"
)

// readinessSettle is how long a readiness status must hold before the change is logged.
// Flapping probes produce one line with the final status.
const readinessSettle = 10 * time.Second

// Probe checks one dependency. A failing non-critical probe leaves the portal serving in a
// degraded mode instead of taking it out of rotation.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// BackendProbe treats any answer below 500 as alive; the backend root commonly answers 404.
func BackendProbe(baseURL string) Probe {
	client := &http.Client{Timeout: 2 * time.Second}
	return Probe{
		Name:     "backend",
		Critical: true,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				return fmt.Errorf("backend answered %d", resp.StatusCode)
			}
			return nil
		},
	}
}

type probeReport struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency"`
	Error    string `json:"error,omitempty"`
}

type readinessReport struct {
	Status string        `json:"status"`
	Probes []probeReport `json:"probes"`
}

type ReadinessHandler struct {
	probes  []Probe
	timeout time.Duration

	mu       sync.Mutex
	observed string
	reported string
	settled  *format.Debouncer[string]
}

func NewReadinessHandler(probes ...Probe) *ReadinessHandler {
	h := &ReadinessHandler{probes: probes, timeout: 3 * time.Second}
	h.settled = format.NewDebouncer(readinessSettle, h.report)
	return h
}

// observe feeds a freshly computed status to the settle debouncer when it differs from the
// previous one.
func (h *ReadinessHandler) observe(status string) {
	h.mu.Lock()
	changed := status != h.observed
	h.observed = status
	h.mu.Unlock()
	if changed {
		h.settled.Trigger(status)
	}
}

func (h *ReadinessHandler) report(status string) {
	h.mu.Lock()
	prev := h.reported
	h.reported = status
	h.mu.Unlock()
	if prev == status {
		return
	}
	ev := logger.Log.Info()
	if status != "ready" {
		ev = logger.Log.Warn()
	}
	ev.Str("status", status).Str("previous", prev).Msg("readiness_changed")
}

// Healthz answers as long as the process can serve.
func (h *ReadinessHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Readyz runs every probe in parallel. Status is "ready", "degraded" (a non-critical probe
// failed, still 200) or "not_ready" (503).
func (h *ReadinessHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reports := make([]probeReport, len(h.probes))
	var wg sync.WaitGroup
	for i, p := range h.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := p.Check(ctx)
			reports[i] = probeReport{
				Name:     p.Name,
				Healthy:  err == nil,
				Critical: p.Critical,
				Latency:  time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				reports[i].Error = err.Error()
			}
		}()
	}
	wg.Wait()

	out := readinessReport{Status: "ready", Probes: reports}
	status := http.StatusOK
	for _, rep := range reports {
		if rep.Healthy {
			continue
		}
		logger.Ctx(r.Context()).Warn().Str("probe", rep.Name).Str("error", rep.Error).Msg("readiness_probe_failed")
		if rep.Critical {
			out.Status, status = "not_ready", http.StatusServiceUnavailable
		} else if out.Status == "ready" {
			out.Status = "degraded"
		}
	}

	h.observe(out.Status)

	render.Status(r, status)
	render.JSON(w, r, out)
}
