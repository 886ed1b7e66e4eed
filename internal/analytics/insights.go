package analytics

import (
	"fmt"
	"math"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// peakTimeMinEvents is the number of recent events required before the
// peak-time insight is emitted.
const peakTimeMinEvents = 10

// geoDominanceThreshold is the integer percent a region's share must
// strictly exceed to trigger the geo-dominance insight.
const geoDominanceThreshold = 40

// ComputeInsights derives the insight list from the full current summary.
// Deterministic and non-incremental: each call replaces the previous list
// wholesale.
func ComputeInsights(summary *model.AnalyticsSummary) []model.Insight {
	insights := []model.Insight{}

	if insight, ok := peakTimeInsight(summary.RecentEvents); ok {
		insights = append(insights, insight)
	}
	if insight, ok := geoDominanceInsight(summary.ByRegion, summary.Total); ok {
		insights = append(insights, insight)
	}

	return insights
}

// peakTimeInsight finds the hour of day with the most recent scans. Ties
// resolve to the numerically smallest hour so the result is stable across
// recomputations.
func peakTimeInsight(events []model.ScanEvent) (model.Insight, bool) {
	if len(events) <= peakTimeMinEvents {
		return model.Insight{}, false
	}

	var counts [24]int
	for _, event := range events {
		counts[event.Timestamp.Hour()]++
	}

	peak := 0
	for hour := 1; hour < len(counts); hour++ {
		if counts[hour] > counts[peak] {
			peak = hour
		}
	}

	hour := peak
	return model.Insight{
		Kind:    model.InsightPeakTime,
		Title:   "Peak Activity",
		Hour:    &hour,
		Message: fmt.Sprintf("Most scans occur around %d:00. Considerations for time-based content changes?", hour),
	}, true
}

// geoDominanceInsight reports the top region when its integer-rounded
// share of all scans exceeds the threshold.
func geoDominanceInsight(byRegion map[string]int64, total int64) (model.Insight, bool) {
	if total == 0 || len(byRegion) == 0 {
		return model.Insight{}, false
	}

	var topRegion string
	var topCount int64 = -1
	for region, count := range byRegion {
		if count > topCount || (count == topCount && region < topRegion) {
			topRegion = region
			topCount = count
		}
	}

	percent := int(math.Round(float64(topCount) / float64(total) * 100))
	if percent <= geoDominanceThreshold {
		return model.Insight{}, false
	}

	return model.Insight{
		Kind:    model.InsightGeoDominance,
		Title:   "Targeting Opportunity",
		Region:  topRegion,
		Percent: percent,
		Message: fmt.Sprintf("%d%% of traffic is from %s. Localized content could boost conversion.", percent, topRegion),
	}, true
}
