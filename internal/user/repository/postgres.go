package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"otp-auth-service/internal/user/domain"
)

const userColumns = `id, email, name, role, status, verified, last_login_at, deleted_at, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// Email lookups match exactly; callers normalize case before calling.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, status, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, nullString(u.Name), string(u.Role), string(u.Status), u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// UpdateLastLogin stamps the user's last successful login. A missing row is not an error.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	return err
}

// SetStatus activates or disables the user. A missing row is not an error.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), time.Now().UTC())
	return err
}

// SoftDelete marks the user deleted and disables it. Idempotent.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = $2, status = $3, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at, string(domain.UserStatusDisabled))
	return err
}

// List returns users ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(s rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		name      sql.NullString
		role      string
		status    string
		lastLogin sql.NullTime
		deletedAt sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Email, &name, &role, &status, &u.Verified, &lastLogin, &deletedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.LastLoginAt = nullTimeToPtr(lastLogin)
	u.DeletedAt = nullTimeToPtr(deletedAt)
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
