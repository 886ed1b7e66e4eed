package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	// Stable output order so diffs between scrapes are readable.
	outcomes := make([]string, 0, len(snap.ScansByOutcome))
	for outcome := range snap.ScansByOutcome {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		writeMetric(w, "qr_scans_total{outcome=%q} %d\n", outcome, snap.ScansByOutcome[outcome])
	}

	writeMetric(w, "qr_scan_duration_seconds_count %d\n", snap.ScanDurationCount)
	writeMetric(w, "qr_scan_duration_seconds_sum %.6f\n", float64(snap.ScanDurationTotalNs)/1e9)

	writeMetric(w, "qr_analytics_recorded_total{status=\"success\"} %d\n", snap.AnalyticsRecorded)
	writeMetric(w, "qr_analytics_recorded_total{status=\"dropped\"} %d\n", snap.AnalyticsDropped)

	writeMetric(w, "qr_definitions_created_total %d\n", snap.DefinitionsCreated)
	writeMetric(w, "qr_definitions_deleted_total %d\n", snap.DefinitionsDeleted)
	writeMetric(w, "qr_payloads_uploaded_total %d\n", snap.PayloadsUploaded)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
