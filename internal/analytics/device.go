package analytics

import (
	"strings"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// deviceRule pairs a predicate with the bucket it selects. Rules are
// evaluated in order; the first match wins.
type deviceRule struct {
	class model.DeviceClass
	match func(ua string) bool
}

var tabletMarkers = []string{"tablet", "ipad", "playbook", "silk"}

var mobileMarkers = []string{
	"mobi", // Mobile, IEMobile, Opera Mobi
	"android",
	"iphone",
	"ipod",
	"blackberry",
	"kindle",
	"webos",
	"hpwos",
	"opera mini",
}

// deviceRules are tested in order: tablets before mobiles, since tablet
// user agents usually also carry mobile markers. Anything unmatched is
// Desktop; the Other bucket exists but no rule currently selects it.
var deviceRules = []deviceRule{
	{model.DeviceTablet, func(ua string) bool {
		if containsAny(ua, tabletMarkers) {
			return true
		}
		// Android without "mobi" is a tablet.
		return strings.Contains(ua, "android") && !strings.Contains(ua, "mobi")
	}},
	{model.DeviceMobile, func(ua string) bool {
		return containsAny(ua, mobileMarkers)
	}},
}

// ClassifyDevice buckets a raw user agent. Empty or unrecognized agents
// default to Desktop.
func ClassifyDevice(userAgent string) model.DeviceClass {
	ua := strings.ToLower(userAgent)
	for _, rule := range deviceRules {
		if rule.match(ua) {
			return rule.class
		}
	}
	return model.DeviceDesktop
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
