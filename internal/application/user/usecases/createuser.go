package usecases

import (
	"context"
	"fmt"

	domainUser "bizhub/internal/domain/user"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type CreateUserCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=owner admin member viewer"`
}

// CreateUserUseCase adds an account to the tenant store bound to ctx.
type CreateUserUseCase struct {
	users  domainUser.RepositoryProvider
	hasher PasswordHasher
	logger logger.Interface
}

func NewCreateUserUseCase(users domainUser.RepositoryProvider, hasher PasswordHasher, logger logger.Interface) *CreateUserUseCase {
	return &CreateUserUseCase{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (*domainUser.User, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	repo, err := uc.users.Users(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("user with this email already exists", cmd.Email)
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := authorization.RoleMember
	if cmd.Role != "" {
		role = authorization.UserRole(cmd.Role)
	}

	u, err := domainUser.NewUser(cmd.Email, cmd.Name, hash, role)
	if err != nil {
		return nil, errors.NewValidationError("invalid user", err.Error())
	}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Infow("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}
