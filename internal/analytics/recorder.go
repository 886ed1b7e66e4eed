package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// RecordTimeout bounds a detached analytics update. The scan response
// never waits on it, so the timeout is generous relative to the fetch
// path.
const RecordTimeout = 5 * time.Second

// Recorder aggregates scan events into per-code analytics summaries.
//
// The update is a whole-document read-modify-write against the metadata
// store: concurrent scans of the same code can both read the same prior
// summary and the later write wins, losing one increment. Counts are
// advisory, not exact.
type Recorder struct {
	catalog *store.Catalog
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration
}

// NewRecorder creates a scan event recorder.
func NewRecorder(catalog *store.Catalog, logger *slog.Logger, recorder metrics.Recorder) *Recorder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Recorder{
		catalog: catalog,
		logger:  logger.With("component", "analytics.recorder"),
		metrics: recorder,
		timeout: RecordTimeout,
	}
}

// Record loads the summary for codeID, applies the event and persists the
// result. Initializes a zero-valued summary on the first scan of a code.
func (r *Recorder) Record(ctx context.Context, codeID string, event model.ScanEvent) error {
	summary, err := r.catalog.GetAnalyticsSummary(ctx, codeID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load summary: %w", err)
		}
		summary = model.NewAnalyticsSummary()
	}

	apply(summary, event)
	summary.Insights = ComputeInsights(summary)

	if err := r.catalog.PutAnalyticsSummary(ctx, codeID, summary); err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	return nil
}

// RecordAsync records without blocking the caller. Failures are logged
// and counted but never surfaced: analytics is a side channel to the
// scan response.
func (r *Recorder) RecordAsync(codeID string, event model.ScanEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.Record(ctx, codeID, event); err != nil {
			r.logger.Warn("failed to record scan event",
				"code_id", codeID,
				"error", err,
			)
			r.metrics.IncAnalyticsRecorded("dropped")
			return
		}

		r.logger.Debug("scan event recorded", "code_id", codeID)
		r.metrics.IncAnalyticsRecorded("success")
	}()
}

// apply folds one event into the summary: counters, device bucket,
// region/city maps and the bounded raw event log.
func apply(summary *model.AnalyticsSummary, event model.ScanEvent) {
	summary.EnsureBuckets()

	summary.Total++
	ts := event.Timestamp
	summary.LastScanAt = &ts

	summary.ByDeviceClass[ClassifyDevice(event.UserAgentRaw)]++
	summary.ByRegion[event.Region]++
	summary.ByCity[event.City]++

	summary.RecentEvents = append(summary.RecentEvents, event)
	if overflow := len(summary.RecentEvents) - model.RecentEventLimit; overflow > 0 {
		summary.RecentEvents = summary.RecentEvents[overflow:]
	}
}
