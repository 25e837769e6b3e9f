package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// StoreChecker reports whether the credential store can be read.
type StoreChecker func() error

// HealthChecker answers the liveness and readiness endpoints.
type HealthChecker struct {
	ready        atomic.Bool
	shuttingDown atomic.Bool
	startTime    time.Time
	checkStore   StoreChecker
}

// NewHealthChecker returns a checker that starts out ready. checkStore may
// be nil.
func NewHealthChecker(checkStore StoreChecker) *HealthChecker {
	h := &HealthChecker{startTime: time.Now(), checkStore: checkStore}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetShuttingDown flips readiness off for the rest of the process life.
func (h *HealthChecker) SetShuttingDown() {
	h.shuttingDown.Store(true)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load() && !h.shuttingDown.Load()
}

// HealthResponse is the JSON body of both endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler always answers 200 while the process runs.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{
		Status: healthStatusOK,
		Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
	})
}

// ReadinessHandler answers 503 while not ready, while shutting down or when
// the credential store cannot be read.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	ok := true

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		ok = false
	}
	if h.shuttingDown.Load() {
		checks["shutdown"] = healthStatusShuttingDown
		ok = false
	}
	if h.checkStore != nil {
		if err := h.checkStore(); err != nil {
			checks["credential_store"] = err.Error()
			ok = false
		} else {
			checks["credential_store"] = healthStatusOK
		}
	}

	resp := HealthResponse{Status: healthStatusOK, Checks: checks}
	status := http.StatusOK
	if !ok {
		resp.Status = healthStatusNotReady
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, resp)
}

// Mount registers /healthz and /readyz.
func (h *HealthChecker) Mount(r chi.Router) {
	r.Get("/healthz", h.LivenessHandler)
	r.Get("/readyz", h.ReadinessHandler)
}

func writeHealth(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
