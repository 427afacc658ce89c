package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTenantKey(t *testing.T) {
	localRoots := []string{"localhost"}

	tests := []struct {
		name     string
		host     string
		override string
		wantKey  string
		wantOK   bool
	}{
		{"three labels", "acme.app.example", "", "acme", true},
		{"four labels", "acme.eu.app.example", "", "acme", true},
		{"port is ignored", "acme.app.example:8080", "", "acme", true},
		{"upper case host", "ACME.App.Example", "", "acme", true},
		{"trailing dot", "acme.app.example.", "", "acme", true},
		{"local root", "acme.localhost", "", "acme", true},
		{"local root with port", "acme.localhost:3000", "", "acme", true},
		{"two labels without local root", "acme.com", "", "", false},
		{"single label", "example", "", "", false},
		{"empty host", "", "", "", false},
		{"ipv4 literal", "10.0.0.1", "", "", false},
		{"ipv4 with port", "10.0.0.1:8080", "", "", false},
		{"ipv6 literal with port", "[2001:db8::1]:8080", "", "", false},
		{"override on ip literal host", "10.0.0.1", "acme", "acme", true},
		{"leading empty label", ".app.example", "", "", false},
		{"override wins over host", "acme.app.example", "beta", "beta", true},
		{"override on single label host", "example", "Beta", "beta", true},
		{"blank override is ignored", "acme.app.example", "  ", "acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ExtractTenantKey(tt.host, tt.override, localRoots)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
