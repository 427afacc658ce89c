// Package user is the minimal tenant-local account used to verify credentials
// before a session is opened.
package user

import (
	"fmt"
	"strings"
	"time"

	"bizhub/internal/shared/authorization"
	"bizhub/internal/shared/biztime"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

type User struct {
	ID           uint
	Email        string
	Name         string
	PasswordHash string
	Role         authorization.UserRole
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(email, name, passwordHash string, role authorization.UserRole) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	now := biztime.NowUTC()
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) CanLogin() bool {
	return u.Status == StatusActive
}
