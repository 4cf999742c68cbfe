// Package admin implements the user lifecycle: creation, activation,
// deactivation, soft deletion, and listing. Every mutation is audited.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"otp-auth-service/internal/audit"
	userdomain "otp-auth-service/internal/user/domain"
	userrepo "otp-auth-service/internal/user/repository"
)

// Sentinel errors for admin operations; the handler maps them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserDeleted            = errors.New("user is deleted")
	ErrInvalidInput           = errors.New("invalid input")
)

// listLimitMax caps a single page of ListUsers.
const listLimitMax = 100

// SessionRevoker revokes every session for a user; deactivation and deletion
// cascade through it so a disabled user cannot keep refreshing.
type SessionRevoker interface {
	DeactivateAll(ctx context.Context, userID string) error
}

// Service implements admin user management.
type Service struct {
	users    userrepo.Repository
	sessions SessionRevoker
	auditor  audit.AuditLogger
}

// NewService returns a Service with the given dependencies. auditor may be nil.
func NewService(users userrepo.Repository, sessions SessionRevoker, auditor audit.AuditLogger) *Service {
	return &Service{users: users, sessions: sessions, auditor: auditor}
}

// CreateUser provisions a user with the given role. Emails are unique across
// all users, soft-deleted ones included.
func (s *Service) CreateUser(ctx context.Context, actorID, email, name string, role userdomain.Role) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if role != userdomain.RoleUser && role != userdomain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logEvent(ctx, actorID, "user_created", "user", "user_id="+user.ID)
	return user, nil
}

// DeactivateUser disables the user and revokes all their sessions, so access
// stops at the next token expiry and refresh stops immediately.
func (s *Service) DeactivateUser(ctx context.Context, actorID, userID string) error {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetStatus(ctx, user.ID, userdomain.UserStatusDisabled); err != nil {
		return err
	}
	if err := s.sessions.DeactivateAll(ctx, user.ID); err != nil {
		return err
	}
	s.logEvent(ctx, actorID, "user_deactivated", "user", "user_id="+user.ID)
	return nil
}

// ReactivateUser re-enables a disabled user. Soft-deleted users stay deleted.
func (s *Service) ReactivateUser(ctx context.Context, actorID, userID string) error {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetStatus(ctx, user.ID, userdomain.UserStatusActive); err != nil {
		return err
	}
	s.logEvent(ctx, actorID, "user_reactivated", "user", "user_id="+user.ID)
	return nil
}

// SoftDeleteUser marks the user deleted, disables them, and revokes all
// sessions. The row is kept for audit history; deletion is not reversible
// through this service.
func (s *Service) SoftDeleteUser(ctx context.Context, actorID, userID string) error {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, user.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.sessions.DeactivateAll(ctx, user.ID); err != nil {
		return err
	}
	s.logEvent(ctx, actorID, "user_deleted", "user", "user_id="+user.ID)
	return nil
}

// ListUsers returns users newest first. limit is clamped to [1, 100];
// negative offsets read as zero.
func (s *Service) ListUsers(ctx context.Context, limit, offset int32) ([]*userdomain.User, error) {
	if limit <= 0 || limit > listLimitMax {
		limit = listLimitMax
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// GetUser returns the user by id, ErrUserNotFound when absent.
func (s *Service) GetUser(ctx context.Context, userID string) (*userdomain.User, error) {
	return s.lookup(ctx, userID)
}

func (s *Service) lookup(ctx context.Context, userID string) (*userdomain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.DeletedAt != nil {
		return nil, ErrUserDeleted
	}
	return user, nil
}

func (s *Service) logEvent(ctx context.Context, actorID, action, resource, metadata string) {
	if s.auditor != nil {
		s.auditor.LogEvent(ctx, actorID, action, resource, metadata)
	}
}
