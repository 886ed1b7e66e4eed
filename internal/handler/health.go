package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking dependency health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	metadata HealthChecker
}

// NewHealthHandler creates a new HealthHandler. Pass nil if the
// metadata store is not yet initialized.
func NewHealthHandler(metadata HealthChecker) *HealthHandler {
	return &HealthHandler{metadata: metadata}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running, with no dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. It checks the metadata store
// and returns 200 only when it answers. Object storage is not probed:
// a B2 blip should not pull the whole pod out of rotation when
// definition and analytics reads still work.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.metadata != nil {
		if err := h.metadata.Ping(ctx); err != nil {
			checks["metadata_store"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["metadata_store"] = "ok"
		}
	} else {
		checks["metadata_store"] = "not configured"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{Status: status, Checks: checks})
}
