package utils

import "strings"

// MaskEmail keeps the first character of the local part and the domain, so
// "ann@acme.test" logs as "a***@acme.test". An empty address stays empty.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return "***"
	}
	if local == "" {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}
