package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bizhub/internal/domain/session"
	"bizhub/internal/domain/user"
	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

type PasswordVerifier interface {
	Verify(password, hash string) error
	Burn(password string)
}

type TokenIssuer interface {
	Generate(userID uint, sessionID string, tenantID uint, role authorization.UserRole) (*auth.AccessToken, error)
}

type LoginCommand struct {
	TenantID uint
	Email    string
	Password string
	Meta     session.RequestMeta
}

type LoginResult struct {
	User        *user.User
	Session     *session.UserSession
	AccessToken string
	ExpiresIn   int64
}

// LoginUseCase checks credentials against the tenant's users and opens a new
// current session for the account.
type LoginUseCase struct {
	users    user.RepositoryProvider
	sessions *SessionManager
	hasher   PasswordVerifier
	tokens   TokenIssuer
	logger   logger.Interface
}

func NewLoginUseCase(
	users user.RepositoryProvider,
	sessions *SessionManager,
	hasher PasswordVerifier,
	tokens TokenIssuer,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	repo, err := uc.users.Users(ctx)
	if err != nil {
		return nil, err
	}

	u, err := repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Don't reveal whether the email exists
	if u == nil {
		uc.hasher.Burn(cmd.Password)
		uc.logger.Infow("login rejected", "email", utils.MaskEmail(cmd.Email), "reason", "unknown_email", "ip", cmd.Meta.IPAddress)
		return nil, errors.NewUnauthenticatedError("invalid email or password")
	}
	if err := uc.hasher.Verify(cmd.Password, u.PasswordHash); err != nil {
		uc.logger.Infow("login rejected", "user_id", u.ID, "reason", "bad_password", "ip", cmd.Meta.IPAddress)
		return nil, errors.NewUnauthenticatedError("invalid email or password")
	}
	if !u.CanLogin() {
		uc.logger.Infow("login rejected", "user_id", u.ID, "reason", "disabled", "ip", cmd.Meta.IPAddress)
		return nil, errors.NewUnauthenticatedError("account is disabled")
	}

	s, err := uc.sessions.CreateSession(ctx, u.ID, uuid.NewString(), cmd.Meta)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Generate(u.ID, s.SessionID, cmd.TenantID, u.Role)
	if err != nil {
		uc.logger.Errorw("failed to issue access token", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Infow("user logged in successfully", "user_id", u.ID, "session_id", s.SessionID)

	return &LoginResult{
		User:        u,
		Session:     s,
		AccessToken: token.Token,
		ExpiresIn:   token.ExpiresIn,
	}, nil
}
