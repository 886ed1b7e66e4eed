package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/nahomWM/Quantum-Qr-Code/internal/service"
)

// PayloadHandler accepts payload uploads.
type PayloadHandler struct {
	svc           *service.PayloadService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewPayloadHandler creates a new PayloadHandler.
func NewPayloadHandler(svc *service.PayloadService, logger *slog.Logger, maxUploadSize int64) *PayloadHandler {
	return &PayloadHandler{
		svc:           svc,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// Upload handles POST /upload with a multipart "file" field. The
// stored descriptor is returned so authoring clients can reference the
// payload from a definition.
func (h *PayloadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailure, "Could not read upload")
		return
	}

	desc, err := h.svc.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpload):
			writeError(w, http.StatusBadRequest, CodeValidationFailure, err.Error())
		case errors.Is(err, service.ErrUpstream):
			h.logger.Error("upload_storage_error", "filename", header.Filename, "error", err)
			writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Storage error")
		default:
			h.logger.Error("upload_error", "filename", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, CodeInternalError, "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusCreated, desc)
}
