// Package health provides liveness and readiness probe endpoints. Readiness
// checks run on demand when the probe is requested; the ready flag gates
// traffic during startup and shutdown draining.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one component; nil means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health manages liveness and readiness state for a service.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []check
}

// New creates a Health instance in a not-ready state; call SetReady(true)
// once initialization is complete.
func New() *Health {
	return &Health{}
}

// AddReadinessCheck registers a readiness check, e.g. database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the readiness gate. A draining service sets it to false
// before shutting down so load balancers stop routing to it.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// LiveEndpoint always reports 200 while the process can serve requests.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyEndpoint reports 200 when the ready flag is set and every readiness
// check passes, 503 otherwise with per-check detail.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}

	h.mu.RLock()
	checks := make([]check, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	detail := make(map[string]string, len(checks))
	healthy := true
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			detail[c.name] = err.Error()
			healthy = false
			continue
		}
		detail[c.name] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeStatus(w, status, detail)
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
