// Package health provides the service's health check endpoints.
//
// Docker and Kubernetes probe /healthz and /readyz for liveness and
// readiness; /health additionally reports service metadata and whether the
// TTS API key is configured, for human operators.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Probe tracks readiness and serves the health endpoints.
type Probe struct {
	service          string
	version          string
	apiKeyConfigured bool
	ready            atomic.Bool
}

// NewProbe creates a health probe reporting the given service metadata.
func NewProbe(service, version string, apiKeyConfigured bool) *Probe {
	return &Probe{
		service:          service,
		version:          version,
		apiKeyConfigured: apiKeyConfigured,
	}
}

// SetReady marks the service as ready to accept traffic.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

// Register mounts the health endpoints on mux.
func (p *Probe) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", p.handleProbe)
	mux.HandleFunc("GET /readyz", p.handleProbe)
	mux.HandleFunc("GET /health", p.handleStatus)
}

func (p *Probe) handleProbe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !p.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleStatus reports service metadata alongside the health status.
//
// @Summary     Service health
// @Description Reports service name, version, and whether the TTS API key is configured.
// @Tags        health
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /health [get]
func (p *Probe) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":             "healthy",
		"service":            p.service,
		"version":            p.version,
		"api_key_configured": p.apiKeyConfigured,
	})
}
