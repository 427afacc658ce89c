package session

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

const unknown = "unknown"

// DeviceInfo is the coarse client fingerprint derived from a User-Agent.
type DeviceInfo struct {
	Type     DeviceType
	Name     string
	Browser  string
	Platform string
}

// ParseUserAgent classifies a User-Agent string. Tablet markers win over mobile
// markers because tablet agents usually also carry "Mobile".
func ParseUserAgent(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{Type: DeviceUnknown, Name: unknown, Browser: unknown, Platform: unknown}
	}

	parsed := ua.Parse(userAgent)
	info := DeviceInfo{
		Type:     classify(userAgent, parsed),
		Browser:  orUnknown(parsed.Name),
		Platform: orUnknown(parsed.OS),
	}
	info.Name = deviceName(userAgent, info)
	return info
}

func classify(raw string, parsed ua.UserAgent) DeviceType {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		return DeviceTablet
	case strings.Contains(lower, "android"):
		// Android phones send "Mobile"; tablets do not
		if strings.Contains(lower, "mobile") {
			return DeviceMobile
		}
		return DeviceTablet
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "iphone"):
		return DeviceMobile
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

func deviceName(raw string, info DeviceInfo) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "iphone"):
		return "iPhone"
	case strings.Contains(lower, "ipad"):
		return "iPad"
	}
	if info.Browser == unknown && info.Platform == unknown {
		return unknown
	}
	return info.Browser + " on " + info.Platform
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
