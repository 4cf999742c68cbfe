package domain

import (
	"errors"
	"time"
)

// User is the core user entity. The auth core mutates only LastLoginAt;
// status, role, and deletion are admin concerns.
type User struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	Status      UserStatus
	Verified    bool
	LastLoginAt *time.Time // nil until first successful login
	DeletedAt   *time.Time // nil unless soft-deleted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Active reports whether the user may authenticate: active status and not soft-deleted.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive && u.DeletedAt == nil
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
