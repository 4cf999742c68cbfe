package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"otp-auth-service/internal/otp/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_challenges (id, email, code_hash, purpose, verified, attempts, max_attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Email, c.CodeHash, string(c.Purpose), c.Verified, c.Attempts, c.MaxAttempts, c.ExpiresAt, c.CreatedAt,
	)
	return err
}

// FindValid returns the newest redeemable challenge for (email, codeHash, purpose), or nil.
func (r *PostgresRepository) FindValid(ctx context.Context, email, codeHash string, purpose domain.Purpose, now time.Time) (*domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, code_hash, purpose, verified, attempts, max_attempts, expires_at, created_at
		FROM otp_challenges
		WHERE email = $1 AND code_hash = $2 AND purpose = $3
		  AND verified = FALSE AND attempts < max_attempts AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1`,
		email, codeHash, string(purpose), now,
	)
	var c domain.Challenge
	var p string
	err := row.Scan(&c.ID, &c.Email, &c.CodeHash, &p, &c.Verified, &c.Attempts, &c.MaxAttempts, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Purpose = domain.Purpose(p)
	return &c, nil
}

// MarkVerified flips the challenge to verified. A missing row is not an error.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET verified = TRUE WHERE id = $1`, id)
	return err
}

// IncrementAttempts bumps attempts on every challenge matching (email, codeHash, purpose).
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, email, codeHash string, purpose domain.Purpose) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE otp_challenges SET attempts = attempts + 1
		WHERE email = $1 AND code_hash = $2 AND purpose = $3`,
		email, codeHash, string(purpose))
	return err
}

// DeleteStale removes expired or verified challenges and returns how many were removed.
func (r *PostgresRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE expires_at <= $1 OR verified = TRUE`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
