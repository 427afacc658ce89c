package models

import (
	"time"

	"bizhub/internal/shared/constants"
)

// UserSessionModel is one login session in a tenant's store. Rows are never
// deleted; LoggedOutAt marks the terminal state.
type UserSessionModel struct {
	ID           uint       `gorm:"primarykey"`
	SessionID    string     `gorm:"uniqueIndex:uk_user_sessions_session_id;not null;size:128"`
	UserID       uint       `gorm:"not null;index:idx_user_sessions_user_active,priority:1"`
	IPAddress    string     `gorm:"not null;size:45"`
	UserAgent    string     `gorm:"not null;size:512"`
	DeviceType   string     `gorm:"not null;size:16"`
	DeviceName   string     `gorm:"not null;size:255"`
	Browser      string     `gorm:"not null;size:64"`
	Platform     string     `gorm:"not null;size:64"`
	Location     *string    `gorm:"size:255"`
	IsCurrent    bool       `gorm:"not null;default:false"`
	LastActivity time.Time  `gorm:"not null;index:idx_user_sessions_last_activity"`
	LoggedOutAt  *time.Time `gorm:"index:idx_user_sessions_user_active,priority:2"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (UserSessionModel) TableName() string {
	return constants.TableUserSessions
}
