// Package model defines domain entities for the application.
package model

import "time"

// Mode determines how a code definition picks a configuration at scan time.
type Mode string

const (
	// ModeTime selects a configuration by the local clock time of the scan.
	ModeTime Mode = "time"
	// ModeLocation selects a configuration by the scanner's country code.
	ModeLocation Mode = "location"
)

// IsValid checks if the mode is a known value.
func (m Mode) IsValid() bool {
	return m == ModeTime || m == ModeLocation
}

// Configuration is one candidate payload mapping within a CodeDefinition.
// Time-mode configurations carry Start/End; location-mode configurations
// carry RegionCode. All configurations in a definition share its mode.
type Configuration struct {
	PayloadRef  string `json:"payloadRef"`
	DisplayName string `json:"displayName,omitempty"`

	// Time mode: local clock window, "HH:MM". Start may be later than End,
	// in which case the window crosses midnight.
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	// Location mode: ISO-style country code, matched exactly.
	RegionCode string `json:"regionCode,omitempty"`
}

// CodeDefinition maps a scannable code id to an ordered list of candidate
// configurations. Order is significant: the first matching configuration
// wins. Definitions are immutable once stored; updates overwrite in full.
type CodeDefinition struct {
	ID             string          `json:"id"`
	Mode           Mode            `json:"mode"`
	Configurations []Configuration `json:"configurations"`
	CreatedAt      time.Time       `json:"createdAt"`
}
