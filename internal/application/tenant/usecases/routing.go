package usecases

import (
	"net"
	"strings"
)

// ExtractTenantKey derives the tenant routing key of a request. A non-empty
// override header wins. Otherwise the first label of a host with at least
// three labels is the key, and so is the first label of a two-label host whose
// second label is one of localRoots. Ports are ignored; IP literals never carry
// a key.
func ExtractTenantKey(host, override string, localRoots []string) (string, bool) {
	if key := strings.ToLower(strings.TrimSpace(override)); key != "" {
		return key, true
	}

	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}

	labels := strings.Split(host, ".")
	switch {
	case len(labels) >= 3:
		return nonEmpty(labels[0])
	case len(labels) == 2:
		for _, root := range localRoots {
			if strings.EqualFold(labels[1], root) {
				return nonEmpty(labels[0])
			}
		}
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}
