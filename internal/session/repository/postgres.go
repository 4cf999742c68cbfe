package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"otp-auth-service/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, device_info, ip_address, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.RefreshTokenHash,
		sql.NullString{String: s.DeviceInfo, Valid: s.DeviceInfo != ""},
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""},
		s.Active, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

// FindActiveByTokenHash returns the active, unexpired session for the hash, or nil.
func (r *PostgresRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_hash, device_info, ip_address, active, expires_at, last_used_at, created_at
		FROM sessions
		WHERE refresh_token_hash = $1 AND active = TRUE AND expires_at > $2`,
		tokenHash, now,
	)
	var (
		s          domain.Session
		deviceInfo sql.NullString
		ipAddress  sql.NullString
		lastUsed   sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &deviceInfo, &ipAddress, &s.Active, &s.ExpiresAt, &lastUsed, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.DeviceInfo = deviceInfo.String
	s.IPAddress = ipAddress.String
	if lastUsed.Valid {
		s.LastUsedAt = &lastUsed.Time
	}
	return &s, nil
}

// Touch updates the session's last-used timestamp. A missing row is not an error.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

// DeactivateByTokenHash marks the matching session inactive. Idempotent.
func (r *PostgresRepository) DeactivateByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = FALSE WHERE refresh_token_hash = $1`, tokenHash)
	return err
}

// DeactivateAllByUser marks every session for the user inactive.
func (r *PostgresRepository) DeactivateAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = FALSE WHERE user_id = $1`, userID)
	return err
}
