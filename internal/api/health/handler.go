// Package health provides health check endpoints for the API.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Checker defines the interface for health checkers.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Handler manages health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers []Checker
	version  string
	started  time.Time
	timeout  time.Duration
}

// NewHandler creates a new health handler reporting version.
func NewHandler(version string) *Handler {
	return &Handler{
		version: version,
		started: time.Now(),
		timeout: 5 * time.Second,
	}
}

// RegisterChecker adds a dependency checker.
func (h *Handler) RegisterChecker(c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, c)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health returns basic health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// Live returns liveness probe status.
// Returns 200 if the process is running.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "live"})
}

// Ready returns readiness probe status.
// Runs all registered checkers concurrently and returns 200 only if all pass.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	var (
		resultsMu sync.Mutex
		results   = make(map[string]string, len(checkers))
	)
	// A plain group so one failure does not cancel the remaining checks.
	var g errgroup.Group
	for _, checker := range checkers {
		g.Go(func() error {
			err := checker.Check(ctx)
			resultsMu.Lock()
			defer resultsMu.Unlock()
			if err != nil {
				results[checker.Name()] = err.Error()
				return err
			}
			results[checker.Name()] = "ok"
			return nil
		})
	}

	resp := HealthResponse{Status: "ready", Checks: results}
	status := http.StatusOK
	if err := g.Wait(); err != nil {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
