// Package health exposes liveness and readiness endpoints backed by named
// check functions.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health runs registered checks on demand when its endpoints are hit.
type Health struct {
	mu        sync.RWMutex
	liveness  []check
	readiness []check

	ready atomic.Bool
}

func New() *Health {
	return &Health{}
}

// AddLiveness registers a check consulted by the liveness endpoint.
func (h *Health) AddLiveness(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadiness registers a check consulted by the readiness endpoint.
func (h *Health) AddReadiness(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the readiness gate. While false the readiness endpoint
// answers 503 without running any checks, which lets shutdown drain load
// balancer traffic before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Health) run(ctx context.Context, checks []check) map[string]string {
	results := make(map[string]string, len(checks))
	for _, c := range checks {
		cctx := ctx
		cancel := context.CancelFunc(func() {})
		if c.timeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		if err := c.fn(cctx); err != nil {
			results[c.name] = err.Error()
		} else {
			results[c.name] = "ok"
		}
		cancel()
	}
	return results
}

func writeStatus(w http.ResponseWriter, healthy bool, checks map[string]string) {
	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(overall) })
		if len(checks) > 0 {
			e.Field("checks", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for name, result := range checks {
						e.Field(name, func(e *jx.Encoder) { e.Str(result) })
					}
				})
			})
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(e.Bytes())
}

// LiveEndpoint reports whether the process itself is functioning.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := h.liveness
	h.mu.RUnlock()

	results := h.run(r.Context(), checks)
	writeStatus(w, allOK(results), results)
}

// ReadyEndpoint reports whether the service can take traffic.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeStatus(w, false, nil)
		return
	}

	h.mu.RLock()
	checks := h.readiness
	h.mu.RUnlock()

	results := h.run(r.Context(), checks)
	writeStatus(w, allOK(results), results)
}

func allOK(results map[string]string) bool {
	for _, r := range results {
		if r != "ok" {
			return false
		}
	}
	return true
}
