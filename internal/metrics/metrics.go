// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Scan outcome labels.
const (
	OutcomeServed          = "served"
	OutcomeNotFound        = "not_found"
	OutcomeNoMatch         = "no_match"
	OutcomeUpstreamFailure = "upstream_failure"
	OutcomeError           = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Scan path metrics
	IncScanResolved(outcome string)
	ObserveScanDuration(duration time.Duration)

	// Analytics side channel metrics
	IncAnalyticsRecorded(status string) // status: "success" or "dropped"

	// Authoring metrics
	IncDefinitionCreated()
	IncDefinitionDeleted()
	IncPayloadUploaded()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
