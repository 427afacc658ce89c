package session

import (
	"context"
	"time"
)

// Repository persists sessions in one tenant's store. Implementations are bound
// to a single tenant handle and must not be shared across tenants.
type Repository interface {
	// CreateCurrent inserts s as the user's current session and clears the
	// current flag on every other session of that user in the same transaction.
	CreateCurrent(ctx context.Context, s *UserSession) error

	// GetActive returns nil, nil when no active session carries sessionID.
	GetActive(ctx context.Context, sessionID string) (*UserSession, error)

	ListActiveByUser(ctx context.Context, userID uint) ([]*UserSession, error)

	// ListRecentByUser returns sessions that are still active or were created at
	// or after since, newest first, at most limit rows, excluding excludeSessionID.
	ListRecentByUser(ctx context.Context, userID uint, since time.Time, limit int, excludeSessionID string) ([]*UserSession, error)

	TouchActivity(ctx context.Context, sessionID string, at time.Time) error

	// Logout returns false when no active session of userID has sessionID.
	Logout(ctx context.Context, userID uint, sessionID string, at time.Time) (bool, error)

	LogoutOthers(ctx context.Context, userID uint, keepSessionID string, at time.Time) (int64, error)

	// LogoutIdleBefore logs out every active session whose last activity is
	// strictly before threshold.
	LogoutIdleBefore(ctx context.Context, threshold, at time.Time) (int64, error)
}

// RepositoryProvider resolves the session repository of the tenant carried by ctx.
type RepositoryProvider interface {
	Sessions(ctx context.Context) (Repository, error)
}
