package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nahomWM/Quantum-Qr-Code/internal/analytics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/service"
)

// scanCacheControl lets edge caches hold a resolved payload for an
// hour. Resolution is context-dependent, so anything longer would pin
// stale content past a window boundary for too long.
const scanCacheControl = "public, max-age=3600"

// ScanHandler serves the public scan path.
type ScanHandler struct {
	gateway  *service.ContentGateway
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(gateway *service.ContentGateway, recorder metrics.Recorder, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		gateway:  gateway,
		recorder: recorder,
		logger:   logger,
	}
}

// Scan handles GET /code/{id}: resolves the definition against the
// request context and streams the chosen payload.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	codeID := chi.URLParam(r, "id")
	if codeID == "" {
		h.recorder.IncScanResolved(metrics.OutcomeNotFound)
		writeError(w, http.StatusNotFound, CodeNotFound, "QR code not found")
		return
	}

	start := time.Now()
	scanCtx := analytics.DeriveScanContext(r, start)

	content, err := h.gateway.Serve(r.Context(), codeID, scanCtx)
	duration := time.Since(start)
	h.recorder.ObserveScanDuration(duration)

	if err != nil {
		h.handleScanError(w, codeID, err, duration)
		return
	}

	h.recorder.IncScanResolved(metrics.OutcomeServed)
	h.logger.Info("scan_served",
		"code_id", codeID,
		"filename", content.Filename,
		"bytes", len(content.Bytes),
		"region", scanCtx.Region,
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Bytes)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Filename))
	w.Header().Set("Cache-Control", scanCacheControl)
	_, _ = w.Write(content.Bytes)
}

// Download handles GET /file/{payloadRef}: direct payload retrieval
// without resolution, served as an attachment.
func (h *ScanHandler) Download(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "payloadRef")

	content, err := h.gateway.FetchPayload(r.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayloadNotFound):
			writeError(w, http.StatusNotFound, CodeNotFound, "File not found")
		case errors.Is(err, service.ErrUpstream):
			writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Storage error")
		default:
			h.logger.Error("download_error", "payload_ref", ref, "error", err)
			writeError(w, http.StatusInternalServerError, CodeInternalError, "An internal error occurred")
		}
		return
	}

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Bytes)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.Filename))
	_, _ = w.Write(content.Bytes)
}

func (h *ScanHandler) handleScanError(w http.ResponseWriter, codeID string, err error, duration time.Duration) {
	durationMs := float64(duration.Microseconds()) / 1000

	switch {
	case errors.Is(err, service.ErrCodeNotFound):
		h.recorder.IncScanResolved(metrics.OutcomeNotFound)
		h.logger.Info("scan_not_found", "code_id", codeID, "duration_ms", durationMs)
		writeError(w, http.StatusNotFound, CodeNotFound, "QR code not found")

	case errors.Is(err, service.ErrNoMatch):
		// A normal outcome: the code exists but nothing is scheduled
		// for the caller's context right now.
		h.recorder.IncScanResolved(metrics.OutcomeNoMatch)
		h.logger.Info("scan_no_match", "code_id", codeID, "duration_ms", durationMs)
		writeError(w, http.StatusNotFound, CodeNoMatch, "No content available for this scan")

	case errors.Is(err, service.ErrPayloadNotFound):
		h.recorder.IncScanResolved(metrics.OutcomeNotFound)
		h.logger.Error("scan_dangling_payload", "code_id", codeID, "error", err, "duration_ms", durationMs)
		writeError(w, http.StatusNotFound, CodeNotFound, "QR code not found")

	case errors.Is(err, service.ErrUpstream):
		h.recorder.IncScanResolved(metrics.OutcomeUpstreamFailure)
		h.logger.Error("scan_upstream_failure", "code_id", codeID, "error", err, "duration_ms", durationMs)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "Storage error")

	default:
		h.recorder.IncScanResolved(metrics.OutcomeError)
		h.logger.Error("scan_error", "code_id", codeID, "error", err, "duration_ms", durationMs)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "An internal error occurred")
	}
}
