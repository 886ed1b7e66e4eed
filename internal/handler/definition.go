package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nahomWM/Quantum-Qr-Code/internal/handler/dto"
	"github.com/nahomWM/Quantum-Qr-Code/internal/service"
)

// DefinitionHandler manages code definition CRUD.
type DefinitionHandler struct {
	svc    *service.DefinitionService
	logger *slog.Logger
}

// NewDefinitionHandler creates a new DefinitionHandler.
func NewDefinitionHandler(svc *service.DefinitionService, logger *slog.Logger) *DefinitionHandler {
	return &DefinitionHandler{svc: svc, logger: logger}
}

// Create handles POST /definitions.
func (h *DefinitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Invalid JSON body")
		return
	}

	def, err := h.svc.Create(r.Context(), req.ToCodeDefinition())
	if err != nil {
		if errors.Is(err, service.ErrInvalidDefinition) {
			writeError(w, http.StatusBadRequest, CodeValidationFailure, err.Error())
			return
		}
		h.logger.Error("definition_create_error", "error", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Metadata store unavailable")
		return
	}

	writeJSON(w, http.StatusCreated, def)
}

// Get handles GET /definitions/{id}.
func (h *DefinitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	def, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "Definition not found")
			return
		}
		h.logger.Error("definition_get_error", "code_id", id, "error", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Metadata store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, def)
}

// List handles GET /definitions.
func (h *DefinitionHandler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("definition_list_error", "error", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Metadata store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, dto.DefinitionListResponse{Data: defs})
}

// Delete handles DELETE /definitions/{id}. Deletion is idempotent.
func (h *DefinitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.logger.Error("definition_delete_error", "code_id", id, "error", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Metadata store unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
