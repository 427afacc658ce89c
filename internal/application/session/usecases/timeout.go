package usecases

import (
	"context"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

const DefaultTimeoutMinutes = 120

// TimeoutEnforcer decides whether an authenticated request may use its session.
type TimeoutEnforcer struct {
	sessions       session.RepositoryProvider
	timeoutMinutes int
	clock          biztime.Clock
	logger         logger.Interface
}

func NewTimeoutEnforcer(sessions session.RepositoryProvider, timeoutMinutes int, clock biztime.Clock, logger logger.Interface) *TimeoutEnforcer {
	if timeoutMinutes <= 0 {
		timeoutMinutes = DefaultTimeoutMinutes
	}
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &TimeoutEnforcer{
		sessions:       sessions,
		timeoutMinutes: timeoutMinutes,
		clock:          clock,
		logger:         logger,
	}
}

func (e *TimeoutEnforcer) TimeoutMinutes() int {
	return e.timeoutMinutes
}

// Check fails with SESSION_NOT_FOUND when sessionID has no active row and with
// SESSION_EXPIRED after logging the session out when it sat idle too long.
// An accepted session has its activity advanced.
func (e *TimeoutEnforcer) Check(ctx context.Context, sessionID string) (*session.TimeoutCheck, error) {
	repo, err := e.sessions.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	s, err := repo.GetActive(ctx, sessionID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load session").WithCause(err)
	}
	if s == nil {
		return nil, errors.NewSessionNotFoundError()
	}

	now := e.clock()
	check := session.CheckTimeout(s, now, e.timeoutMinutes)
	if check.Expired {
		if _, err := repo.Logout(ctx, s.UserID, s.SessionID, now); err != nil {
			e.logger.Errorw("failed to logout expired session", "session_id", sessionID, "error", err)
		}
		e.logger.Infow("session expired",
			"user_id", s.UserID,
			"session_id", sessionID,
			"idle_minutes", check.IdleMinutes,
			"timeout_minutes", check.TimeoutMinutes,
		)
		return &check, errors.NewSessionExpiredError(check.IdleMinutes, check.TimeoutMinutes)
	}

	if err := repo.TouchActivity(ctx, sessionID, now); err != nil {
		e.logger.Warnw("failed to update session activity", "session_id", sessionID, "error", err)
	}
	return &check, nil
}
