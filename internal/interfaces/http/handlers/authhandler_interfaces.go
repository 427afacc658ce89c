package handlers

import (
	"context"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/domain/session"
)

type loginExecutor interface {
	Execute(ctx context.Context, cmd sessionUsecases.LoginCommand) (*sessionUsecases.LoginResult, error)
}

type sessionService interface {
	GetActiveSessions(ctx context.Context, userID uint) ([]*session.UserSession, error)
	LogoutSession(ctx context.Context, userID uint, sessionID string) (bool, error)
	LogoutOtherSessions(ctx context.Context, userID uint, keepSessionID string) (int64, error)
	CleanupExpiredSessions(ctx context.Context, timeoutMinutes int) (int64, error)
}
