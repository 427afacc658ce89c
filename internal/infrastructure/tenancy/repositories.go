package tenancy

import (
	"context"

	"bizhub/internal/domain/session"
	"bizhub/internal/domain/user"
	"bizhub/internal/infrastructure/repository"
	"bizhub/internal/shared/errors"
)

// Repositories hands out repositories bound to the store of the tenant carried
// by ctx. Without a resolved tenant there is no store to reach.
type Repositories struct{}

func NewRepositories() *Repositories {
	return &Repositories{}
}

func (Repositories) Sessions(ctx context.Context) (session.Repository, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return nil, errors.NewTenantNotFoundError()
	}
	return repository.NewUserSessionRepository(tc.Handle.DB(), tc.Handle.Transactions()), nil
}

func (Repositories) Users(ctx context.Context) (user.Repository, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return nil, errors.NewTenantNotFoundError()
	}
	return repository.NewUserRepository(tc.Handle.DB()), nil
}
