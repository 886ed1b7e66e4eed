// Package resolver picks the configuration that matches a scan context.
// Resolution is a pure function of its inputs: no I/O, no side effects.
package resolver

import (
	"strconv"
	"strings"
	"time"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// Resolve returns the first configuration, in authored order, that matches
// the scan context, or nil when none does. A nil result is a normal
// outcome, not an error: authors control priority by ordering entries.
func Resolve(configs []model.Configuration, mode model.Mode, scanCtx model.ScanContext) *model.Configuration {
	switch mode {
	case model.ModeTime:
		return resolveByTime(configs, scanCtx.Now)
	case model.ModeLocation:
		return resolveByRegion(configs, scanCtx.Region)
	}
	return nil
}

func resolveByTime(configs []model.Configuration, now time.Time) *model.Configuration {
	clock := now.Hour()*60 + now.Minute()

	for i := range configs {
		start, ok := parseClock(configs[i].Start)
		if !ok {
			continue
		}
		end, ok := parseClock(configs[i].End)
		if !ok {
			continue
		}
		if inWindow(clock, start, end) {
			return &configs[i]
		}
	}
	return nil
}

func resolveByRegion(configs []model.Configuration, region string) *model.Configuration {
	for i := range configs {
		if configs[i].RegionCode == region {
			return &configs[i]
		}
	}
	return nil
}

// inWindow reports whether clock falls inside [start, end], in minutes
// since midnight. A window with start > end crosses midnight: the clock
// matches when it is at or after start, or at or before end.
func inWindow(clock, start, end int) bool {
	if start <= end {
		return clock >= start && clock <= end
	}
	return clock >= start || clock <= end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, bool) {
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// ValidClock reports whether value is a parseable "HH:MM" clock time.
// Used by definition validation.
func ValidClock(value string) bool {
	_, ok := parseClock(value)
	return ok
}
