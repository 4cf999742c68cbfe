package repository

import (
	"context"
	"time"

	"otp-auth-service/internal/session/domain"
)

// Repository defines persistence for refresh sessions. Implementations return
// nil (not an error) for missing rows; errors are reserved for database failures.
// All mutations are single-statement and atomic.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// FindActiveByTokenHash returns the session for the hash if it is active and
	// unexpired at now; nil otherwise.
	FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error)
	// Touch updates the session's last-used timestamp.
	Touch(ctx context.Context, id string, at time.Time) error
	// DeactivateByTokenHash marks the matching session inactive. Idempotent:
	// missing or already-inactive sessions are not an error.
	DeactivateByTokenHash(ctx context.Context, tokenHash string) error
	// DeactivateAllByUser marks every session for the user inactive.
	DeactivateAllByUser(ctx context.Context, userID string) error
}
