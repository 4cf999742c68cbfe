package repository

import (
	"context"
	"time"

	"otp-auth-service/internal/otp/domain"
)

// Repository defines persistence for OTP challenges. Implementations return
// nil (not an error) for missing rows; errors are reserved for database failures.
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	// FindValid returns the most recently issued challenge matching
	// (email, codeHash, purpose) that is unverified, unexpired at now, and has
	// attempts remaining. Returns nil if no such challenge exists.
	FindValid(ctx context.Context, email, codeHash string, purpose domain.Purpose, now time.Time) (*domain.Challenge, error)
	// MarkVerified flips the challenge to verified. Terminal.
	MarkVerified(ctx context.Context, id string) error
	// IncrementAttempts bumps the attempt counter on every challenge matching
	// (email, codeHash, purpose), valid or not. Burning attempts on near-miss
	// codes is the brute-force defence.
	IncrementAttempts(ctx context.Context, email, codeHash string, purpose domain.Purpose) error
	// DeleteStale removes challenges that are expired at now or already verified.
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}
