package tenant

import (
	"context"
	"time"
)

// Directory is the shared, tenant-independent lookup of tenant records. The
// request path only reads from it; administrative flows write to it.
type Directory interface {
	// FindActiveBySubdomain returns nil, nil when no active tenant matches.
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)

	GetByID(ctx context.Context, id uint) (*Tenant, error)

	// GetBySubdomain ignores status.
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)

	List(ctx context.Context, filter ListFilter) ([]*Tenant, error)

	Create(ctx context.Context, t *Tenant) error

	UpdateStatus(ctx context.Context, id uint, status Status) error

	TouchLastAccessed(ctx context.Context, id uint, at time.Time) error
}

type ListFilter struct {
	Status Status
}
