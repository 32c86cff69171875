package api

import (
	"net/http"
)

type healthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version,omitempty"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps ModelDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ModelDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /healthz requests. The service is healthy
// without a model; predictions then come from the matrix and heuristics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	info := h.deps.Model()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		ModelLoaded:  info.Loaded,
		ModelVersion: info.Version,
	})
}
