// Package session models per-user login sessions stored in a tenant's own data
// store.
package session

import (
	"fmt"
	"time"
)

// State is derived from loggedOutAt and isCurrent; it is never stored.
type State string

const (
	StateCurrent   State = "current"
	StateActive    State = "active"
	StateLoggedOut State = "logged_out"
)

type UserSession struct {
	ID           uint
	SessionID    string
	UserID       uint
	IPAddress    string
	UserAgent    string
	DeviceType   DeviceType
	DeviceName   string
	Browser      string
	Platform     string
	Location     string
	IsCurrent    bool
	LastActivity time.Time
	LoggedOutAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUserSession builds the session that becomes the user's current one.
func NewUserSession(userID uint, sessionID string, meta RequestMeta, now time.Time) (*UserSession, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	device := ParseUserAgent(meta.UserAgent)
	return &UserSession{
		SessionID:    sessionID,
		UserID:       userID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		DeviceType:   device.Type,
		DeviceName:   device.Name,
		Browser:      device.Browser,
		Platform:     device.Platform,
		Location:     meta.Location,
		IsCurrent:    true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *UserSession) State() State {
	switch {
	case s.LoggedOutAt != nil:
		return StateLoggedOut
	case s.IsCurrent:
		return StateCurrent
	default:
		return StateActive
	}
}

func (s *UserSession) IsActive() bool {
	return s.LoggedOutAt == nil
}

// IdleMinutes is the number of whole minutes since the last recorded activity.
func (s *UserSession) IdleMinutes(now time.Time) int {
	idle := now.Sub(s.LastActivity)
	if idle < 0 {
		return 0
	}
	return int(idle / time.Minute)
}

// Logout moves the session into the terminal logged-out state. Logging out an
// already logged-out session keeps the original timestamp.
func (s *UserSession) Logout(now time.Time) {
	if s.LoggedOutAt != nil {
		return
	}
	t := now
	s.LoggedOutAt = &t
	s.IsCurrent = false
	s.UpdatedAt = now
}

func (s *UserSession) Touch(now time.Time) {
	s.LastActivity = now
	s.UpdatedAt = now
}
