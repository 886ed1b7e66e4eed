// Package analytics provides scan event capture and aggregation.
package analytics

import (
	"net/http"
	"time"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// Geo headers set by the edge proxy in front of the service.
const (
	HeaderCountry = "CF-IPCountry"
	HeaderCity    = "CF-IPCity"
)

// DeriveScanContext extracts the per-request facts used for resolution and
// analytics. Pure extraction: it never fails, unresolved fields fall back
// to the Unknown token.
func DeriveScanContext(r *http.Request, now time.Time) model.ScanContext {
	region := r.Header.Get(HeaderCountry)
	if region == "" {
		region = model.Unknown
	}

	city := r.Header.Get(HeaderCity)
	if city == "" {
		city = model.Unknown
	}

	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = model.Unknown
	}

	return model.ScanContext{
		Now:          now,
		Region:       region,
		City:         city,
		UserAgentRaw: userAgent,
	}
}
