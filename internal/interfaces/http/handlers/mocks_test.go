package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	sessionUsecases "bizhub/internal/application/session/usecases"
	"bizhub/internal/domain/session"
)

type mockLogin struct {
	mock.Mock
}

func (m *mockLogin) Execute(ctx context.Context, cmd sessionUsecases.LoginCommand) (*sessionUsecases.LoginResult, error) {
	args := m.Called(ctx, cmd)
	if r, _ := args.Get(0).(*sessionUsecases.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) GetActiveSessions(ctx context.Context, userID uint) ([]*session.UserSession, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*session.UserSession)
	return list, args.Error(1)
}

func (m *mockSessions) LogoutSession(ctx context.Context, userID uint, sessionID string) (bool, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessions) LogoutOtherSessions(ctx context.Context, userID uint, keepSessionID string) (int64, error) {
	args := m.Called(ctx, userID, keepSessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessions) CleanupExpiredSessions(ctx context.Context, timeoutMinutes int) (int64, error) {
	args := m.Called(ctx, timeoutMinutes)
	return args.Get(0).(int64), args.Error(1)
}
