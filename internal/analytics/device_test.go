package analytics

import (
	"testing"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

func TestClassifyDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want model.DeviceClass
	}{
		{
			"iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
			model.DeviceMobile,
		},
		{
			"android phone",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			model.DeviceMobile,
		},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
			model.DeviceTablet,
		},
		{
			"android tablet lacks mobile marker",
			"Mozilla/5.0 (Linux; Android 14; SM-X910) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			model.DeviceTablet,
		},
		{
			"kindle silk",
			"Mozilla/5.0 (Linux; U; en-us; KFTHWI Build/JDQ39) Silk/3.20",
			model.DeviceTablet,
		},
		{
			"desktop chrome",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			model.DeviceDesktop,
		},
		{
			"desktop mac",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15",
			model.DeviceDesktop,
		},
		{
			"blackberry",
			"BlackBerry9700/5.0.0.862 Profile/MIDP-2.1",
			model.DeviceMobile,
		},
		{
			"opera mini",
			"Opera/9.80 (J2ME/MIDP; Opera Mini/9.80) Presto/2.12",
			model.DeviceMobile,
		},
		// Unmatched and empty agents fall through to Desktop, not Other.
		{"empty", "", model.DeviceDesktop},
		{"unknown token", model.Unknown, model.DeviceDesktop},
		{"curl", "curl/8.4.0", model.DeviceDesktop},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ClassifyDevice(tt.ua); got != tt.want {
				t.Errorf("ClassifyDevice(%q) = %s, want %s", tt.ua, got, tt.want)
			}
		})
	}
}

func TestClassifyDevice_TabletBeforeMobile(t *testing.T) {
	t.Parallel()

	// Carries both tablet and mobile markers; the tablet rule runs first.
	ua := "Mozilla/5.0 (Linux; Android 14; Tablet) Mobile Safari/537.36"
	if got := ClassifyDevice(ua); got != model.DeviceTablet {
		t.Errorf("ClassifyDevice(%q) = %s, want Tablet", ua, got)
	}
}
