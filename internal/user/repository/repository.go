package repository

import (
	"context"
	"time"

	"otp-auth-service/internal/user/domain"
)

// Repository defines persistence for users. Implementations return nil (not an
// error) for missing rows; errors are reserved for database failures.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateLastLogin stamps the user's last successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// SetStatus activates or disables the user.
	SetStatus(ctx context.Context, id string, status domain.UserStatus) error
	// SoftDelete marks the user deleted without removing the row.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// List returns users ordered by creation time, newest first. Soft-deleted users are included.
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)
}
