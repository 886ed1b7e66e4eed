package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncScanResolved is a no-op.
func (n *NoopRecorder) IncScanResolved(outcome string) {}

// ObserveScanDuration is a no-op.
func (n *NoopRecorder) ObserveScanDuration(duration time.Duration) {}

// IncAnalyticsRecorded is a no-op.
func (n *NoopRecorder) IncAnalyticsRecorded(status string) {}

// IncDefinitionCreated is a no-op.
func (n *NoopRecorder) IncDefinitionCreated() {}

// IncDefinitionDeleted is a no-op.
func (n *NoopRecorder) IncDefinitionDeleted() {}

// IncPayloadUploaded is a no-op.
func (n *NoopRecorder) IncPayloadUploaded() {}
