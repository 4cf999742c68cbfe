// Package session tracks which refresh tokens are currently honorable.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"otp-auth-service/internal/security"
	"otp-auth-service/internal/session/domain"
	"otp-auth-service/internal/session/repository"
)

// Manager creates, finds, and revokes refresh sessions. It owns the hashing of
// token values; callers pass raw refresh tokens and never see hashes.
type Manager struct {
	repo repository.Repository
}

// NewManager returns a Manager backed by the given repository.
func NewManager(repo repository.Repository) *Manager {
	return &Manager{repo: repo}
}

// Create persists a new active session bound to the refresh token and request metadata.
func (m *Manager) Create(ctx context.Context, userID, refreshToken, deviceInfo, ipAddress string, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:               uuid.New().String(),
		UserID:           userID,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		DeviceInfo:       deviceInfo,
		IPAddress:        ipAddress,
		Active:           true,
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FindActive returns the active, unexpired session for the refresh token, or
// nil if no such session exists. The check is independent of token signature
// verification: a revoked-but-unexpired token finds nothing here.
func (m *Manager) FindActive(ctx context.Context, refreshToken string) (*domain.Session, error) {
	hash := security.HashRefreshToken(refreshToken)
	s, err := m.repo.FindActiveByTokenHash(ctx, hash, time.Now().UTC())
	if err != nil || s == nil {
		return s, err
	}
	// Re-verify against the stored hash in constant time before honoring the row.
	if !security.RefreshTokenHashEqual(refreshToken, s.RefreshTokenHash) {
		return nil, nil
	}
	return s, nil
}

// Touch stamps the session's last use; called on every successful refresh.
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	return m.repo.Touch(ctx, sessionID, time.Now().UTC())
}

// Deactivate revokes the session matching the refresh token. Idempotent:
// an unknown or already-inactive token is not an error.
func (m *Manager) Deactivate(ctx context.Context, refreshToken string) error {
	return m.repo.DeactivateByTokenHash(ctx, security.HashRefreshToken(refreshToken))
}

// DeactivateAll revokes every session for the user.
func (m *Manager) DeactivateAll(ctx context.Context, userID string) error {
	return m.repo.DeactivateAllByUser(ctx, userID)
}
