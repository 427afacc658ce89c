package usecases

import (
	"context"
	"fmt"
	"time"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/logger"
)

// SessionManager owns the lifecycle of login sessions inside the tenant store
// resolved for the request.
type SessionManager struct {
	sessions session.RepositoryProvider
	clock    biztime.Clock
	logger   logger.Interface
}

func NewSessionManager(sessions session.RepositoryProvider, clock biztime.Clock, logger logger.Interface) *SessionManager {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &SessionManager{
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// CreateSession records a login as the user's current session. Every earlier
// session of the user loses the current flag in the same transaction.
func (m *SessionManager) CreateSession(ctx context.Context, userID uint, sessionID string, meta session.RequestMeta) (*session.UserSession, error) {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	s, err := session.NewUserSession(userID, sessionID, meta, m.clock())
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	if err := repo.CreateCurrent(ctx, s); err != nil {
		m.logger.Errorw("failed to create session", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Infow("session created",
		"user_id", userID,
		"session_id", sessionID,
		"device_type", s.DeviceType,
		"ip", meta.IPAddress,
	)
	return s, nil
}

func (m *SessionManager) UpdateActivity(ctx context.Context, sessionID string) error {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return err
	}
	if err := repo.TouchActivity(ctx, sessionID, m.clock()); err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// GetSession returns nil, nil when sessionID is unknown or logged out.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*session.UserSession, error) {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	s, err := repo.GetActive(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (m *SessionManager) GetActiveSessions(ctx context.Context, userID uint) ([]*session.UserSession, error) {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// LogoutSession returns false when the session does not belong to userID or is
// already logged out.
func (m *SessionManager) LogoutSession(ctx context.Context, userID uint, sessionID string) (bool, error) {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return false, err
	}
	ok, err := repo.Logout(ctx, userID, sessionID, m.clock())
	if err != nil {
		return false, fmt.Errorf("failed to logout session: %w", err)
	}
	if ok {
		m.logger.Infow("session logged out", "user_id", userID, "session_id", sessionID)
	}
	return ok, nil
}

func (m *SessionManager) LogoutOtherSessions(ctx context.Context, userID uint, keepSessionID string) (int64, error) {
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	n, err := repo.LogoutOthers(ctx, userID, keepSessionID, m.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to logout other sessions: %w", err)
	}
	m.logger.Infow("other sessions logged out", "user_id", userID, "kept", keepSessionID, "count", n)
	return n, nil
}

// CleanupExpiredSessions logs out every active session of the tenant whose last
// activity is older than timeoutMinutes.
func (m *SessionManager) CleanupExpiredSessions(ctx context.Context, timeoutMinutes int) (int64, error) {
	if timeoutMinutes <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %d", timeoutMinutes)
	}
	repo, err := m.sessions.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	now := m.clock()
	n, err := repo.LogoutIdleBefore(ctx, now.Add(-time.Duration(timeoutMinutes)*time.Minute), now)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return n, nil
}
