package user

import "context"

type Repository interface {
	// GetByEmail returns nil, nil when no user has the address.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	Create(ctx context.Context, u *User) error
}

// RepositoryProvider resolves the user repository of the tenant carried by ctx.
type RepositoryProvider interface {
	Users(ctx context.Context) (Repository, error)
}
