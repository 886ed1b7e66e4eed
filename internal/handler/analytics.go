package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nahomWM/Quantum-Qr-Code/internal/handler/dto"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// maxBatchIDs bounds a single batch lookup. Dashboards page their
// code lists well below this.
const maxBatchIDs = 100

// AnalyticsHandler serves aggregated scan summaries.
type AnalyticsHandler struct {
	catalog *store.Catalog
	logger  *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(catalog *store.Catalog, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{catalog: catalog, logger: logger}
}

// Get handles GET /analytics/{id}. A code that has never been scanned
// returns a zero-valued summary rather than 404 so dashboards render
// empty charts without special-casing.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.fetchSummary(r, id)
	if err != nil {
		h.logger.Error("analytics_get_error", "code_id", id, "error", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Analytics store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Batch handles POST /analytics/batch: one summary per requested id,
// in request order.
func (h *AnalyticsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyticsBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "ids must be a non-empty array")
		return
	}
	if len(req.IDs) > maxBatchIDs {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Too many ids in one batch")
		return
	}

	entries := make([]dto.AnalyticsBatchEntry, 0, len(req.IDs))
	for _, id := range req.IDs {
		summary, err := h.fetchSummary(r, id)
		if err != nil {
			h.logger.Error("analytics_batch_error", "code_id", id, "error", err)
			writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Analytics store unavailable")
			return
		}
		entries = append(entries, dto.AnalyticsBatchEntry{ID: id, AnalyticsSummary: summary})
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *AnalyticsHandler) fetchSummary(r *http.Request, id string) (*model.AnalyticsSummary, error) {
	summary, err := h.catalog.GetAnalyticsSummary(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.NewAnalyticsSummary(), nil
		}
		return nil, err
	}
	return summary, nil
}
