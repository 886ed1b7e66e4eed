package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ScansByOutcome      map[string]uint64
	ScanDurationCount   uint64
	ScanDurationTotalNs int64

	AnalyticsRecorded uint64
	AnalyticsDropped  uint64

	DefinitionsCreated uint64
	DefinitionsDeleted uint64
	PayloadsUploaded   uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics
// endpoint.
type InMemoryRecorder struct {
	mu             sync.Mutex
	scansByOutcome map[string]uint64

	scanDurationCount   uint64
	scanDurationTotalNs int64

	analyticsRecorded uint64
	analyticsDropped  uint64

	definitionsCreated uint64
	definitionsDeleted uint64
	payloadsUploaded   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{scansByOutcome: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	scans := make(map[string]uint64, len(m.scansByOutcome))
	for outcome, count := range m.scansByOutcome {
		scans[outcome] = count
	}
	m.mu.Unlock()

	return Snapshot{
		ScansByOutcome:      scans,
		ScanDurationCount:   atomic.LoadUint64(&m.scanDurationCount),
		ScanDurationTotalNs: atomic.LoadInt64(&m.scanDurationTotalNs),
		AnalyticsRecorded:   atomic.LoadUint64(&m.analyticsRecorded),
		AnalyticsDropped:    atomic.LoadUint64(&m.analyticsDropped),
		DefinitionsCreated:  atomic.LoadUint64(&m.definitionsCreated),
		DefinitionsDeleted:  atomic.LoadUint64(&m.definitionsDeleted),
		PayloadsUploaded:    atomic.LoadUint64(&m.payloadsUploaded),
	}
}

// IncScanResolved increments the counter for a scan outcome.
func (m *InMemoryRecorder) IncScanResolved(outcome string) {
	m.mu.Lock()
	m.scansByOutcome[outcome]++
	m.mu.Unlock()
}

// ObserveScanDuration records how long serving a scan took.
func (m *InMemoryRecorder) ObserveScanDuration(duration time.Duration) {
	atomic.AddUint64(&m.scanDurationCount, 1)
	atomic.AddInt64(&m.scanDurationTotalNs, duration.Nanoseconds())
}

// IncAnalyticsRecorded increments the analytics side channel counter.
func (m *InMemoryRecorder) IncAnalyticsRecorded(status string) {
	if status == "success" {
		atomic.AddUint64(&m.analyticsRecorded, 1)
		return
	}
	atomic.AddUint64(&m.analyticsDropped, 1)
}

// IncDefinitionCreated increments the definitions created counter.
func (m *InMemoryRecorder) IncDefinitionCreated() {
	atomic.AddUint64(&m.definitionsCreated, 1)
}

// IncDefinitionDeleted increments the definitions deleted counter.
func (m *InMemoryRecorder) IncDefinitionDeleted() {
	atomic.AddUint64(&m.definitionsDeleted, 1)
}

// IncPayloadUploaded increments the uploads counter.
func (m *InMemoryRecorder) IncPayloadUploaded() {
	atomic.AddUint64(&m.payloadsUploaded, 1)
}
