package model

import "time"

// Unknown is the literal token used when a request context field cannot be
// resolved. A location-mode configuration only matches it when explicitly
// authored with this code.
const Unknown = "Unknown"

// RecentEventLimit bounds the raw event log kept per code. Oldest events
// are evicted first once the limit is exceeded.
const RecentEventLimit = 200

// DeviceClass buckets a scan by the device family of its user agent.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "Mobile"
	DeviceDesktop DeviceClass = "Desktop"
	DeviceTablet  DeviceClass = "Tablet"
	DeviceOther   DeviceClass = "Other"
)

// DeviceClasses lists every bucket in a stable order.
var DeviceClasses = []DeviceClass{DeviceMobile, DeviceDesktop, DeviceTablet, DeviceOther}

// ScanEvent is a single recorded scan. Immutable; appended, never edited.
type ScanEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Region       string    `json:"region"`
	City         string    `json:"city"`
	UserAgentRaw string    `json:"userAgent"`
}

// Insight kinds.
const (
	InsightPeakTime     = "peak_time"
	InsightGeoDominance = "geo_dominance"
)

// Insight is a derived observation over a summary. The insights list is
// recomputed wholesale on every update; no history accumulates.
type Insight struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// peak_time only. Pointer so hour 0 survives serialization.
	Hour *int `json:"hour,omitempty"`

	// geo_dominance only.
	Region  string `json:"region,omitempty"`
	Percent int    `json:"percent,omitempty"`
}

// ScanContext carries the per-request facts used to pick a configuration
// and to record analytics. Unresolved fields hold the Unknown token.
type ScanContext struct {
	Now          time.Time
	Region       string
	City         string
	UserAgentRaw string
}

// AnalyticsSummary is the aggregated analytics document for one code.
// It is read, modified and written back in full on every recorded scan;
// concurrent scans of the same code can lose updates (last write wins),
// so counts are advisory, not exact.
type AnalyticsSummary struct {
	Total         int64                 `json:"total"`
	ByRegion      map[string]int64      `json:"byRegion"`
	ByCity        map[string]int64      `json:"byCity"`
	ByDeviceClass map[DeviceClass]int64 `json:"byDeviceClass"`
	RecentEvents  []ScanEvent           `json:"recentEvents"`
	LastScanAt    *time.Time            `json:"lastScanAt,omitempty"`
	Insights      []Insight             `json:"insights"`
}

// NewAnalyticsSummary returns a zero-valued summary with every device
// bucket present.
func NewAnalyticsSummary() *AnalyticsSummary {
	buckets := make(map[DeviceClass]int64, len(DeviceClasses))
	for _, class := range DeviceClasses {
		buckets[class] = 0
	}
	return &AnalyticsSummary{
		ByRegion:      make(map[string]int64),
		ByCity:        make(map[string]int64),
		ByDeviceClass: buckets,
		RecentEvents:  []ScanEvent{},
		Insights:      []Insight{},
	}
}

// EnsureBuckets backfills maps on summaries decoded from older documents
// so increments never hit a nil map.
func (s *AnalyticsSummary) EnsureBuckets() {
	if s.ByRegion == nil {
		s.ByRegion = make(map[string]int64)
	}
	if s.ByCity == nil {
		s.ByCity = make(map[string]int64)
	}
	if s.ByDeviceClass == nil {
		s.ByDeviceClass = make(map[DeviceClass]int64, len(DeviceClasses))
	}
	for _, class := range DeviceClasses {
		if _, ok := s.ByDeviceClass[class]; !ok {
			s.ByDeviceClass[class] = 0
		}
	}
}
