// Package tenant holds the tenant directory aggregate. A tenant owns one
// isolated data store addressed by its database name and is routed to by its
// subdomain.
package tenant

import (
	"fmt"
	"strings"
	"time"

	"bizhub/internal/shared/biztime"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid tenant status %q", s)
	}
	return status, nil
}

type Tenant struct {
	ID             uint
	Name           string
	Subdomain      string
	DatabaseName   string
	Status         Status
	Settings       map[string]interface{}
	LastAccessedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTenant builds a tenant in the inactive state. It becomes active only after
// its store has been created and migrated.
func NewTenant(name, subdomain, databaseName string) (*Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if subdomain == "" {
		return nil, fmt.Errorf("tenant subdomain is required")
	}
	if databaseName == "" {
		return nil, fmt.Errorf("tenant database name is required")
	}

	now := biztime.NowUTC()
	return &Tenant{
		Name:         strings.TrimSpace(name),
		Subdomain:    strings.ToLower(subdomain),
		DatabaseName: databaseName,
		Status:       StatusInactive,
		Settings:     map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DefaultDatabaseName derives a store name from the subdomain.
func DefaultDatabaseName(prefix, subdomain string) string {
	return prefix + strings.ReplaceAll(strings.ToLower(subdomain), "-", "_")
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

func (t *Tenant) String() string {
	return fmt.Sprintf("tenant(%d,%s)", t.ID, t.Subdomain)
}
