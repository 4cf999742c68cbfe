package otp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"otp-auth-service/internal/devotp"
	"otp-auth-service/internal/mail"
	"otp-auth-service/internal/otp/domain"
	"otp-auth-service/internal/otp/repository"
	userdomain "otp-auth-service/internal/user/domain"
)

// Sentinel errors for challenge issuance and redemption.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidOrExpiredOTP deliberately collapses wrong-code, expired, and
	// attempts-exhausted into one externally visible failure.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired code")
)

// deliverTimeout bounds the async mail dispatch after a challenge commits.
const deliverTimeout = 15 * time.Second

// UserDirectory is the minimal user lookup the manager needs for issuance policy.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Config holds challenge policy knobs.
type Config struct {
	// CodeLength is the number of digits in issued codes.
	CodeLength int
	// TTL is how long an issued code stays redeemable.
	TTL time.Duration
	// MaxAttempts is the failed-redemption budget per challenge.
	MaxAttempts int
	// MasterCode, when non-empty, is accepted without the digit-format check.
	// It is only a format bypass: redemption still requires a matching stored,
	// valid challenge.
	MasterCode string
}

// Manager creates, redeems, and sweeps OTP challenges.
type Manager struct {
	repo   repository.Repository
	users  UserDirectory
	sender mail.Sender
	dev    devotp.Store // nil outside dev OTP mode
	cfg    Config
}

// NewManager returns a Manager. dev may be nil; then plaintext codes are never retained.
func NewManager(repo repository.Repository, users UserDirectory, sender mail.Sender, dev devotp.Store, cfg Config) *Manager {
	return &Manager{repo: repo, users: users, sender: sender, dev: dev, cfg: cfg}
}

// Issue generates and persists a challenge for (email, purpose) and dispatches
// the code by mail. Codes are issued only for existing, active users.
//
// Delivery is asynchronous and best-effort: once the challenge is persisted,
// Issue reports success even if the mail send later fails.
func (m *Manager) Issue(ctx context.Context, email string, purpose domain.Purpose) (*domain.Challenge, error) {
	if !purpose.Valid() {
		return nil, ErrInvalidInput
	}
	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	// Opportunistic sweep; issuance proceeds even if it fails.
	if _, err := m.repo.DeleteStale(ctx, time.Now().UTC()); err != nil {
		log.Printf("otp: stale challenge sweep failed: %v", err)
	}

	code, err := GenerateCode(m.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := time.Now().UTC()
	challenge := &domain.Challenge{
		ID:          uuid.New().String(),
		Email:       email,
		CodeHash:    HashCode(code),
		Purpose:     purpose,
		Attempts:    0,
		MaxAttempts: m.cfg.MaxAttempts,
		ExpiresAt:   now.Add(m.cfg.TTL),
		CreatedAt:   now,
	}
	if err := m.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	if m.dev != nil {
		m.dev.Put(ctx, email, string(purpose), code, challenge.ExpiresAt)
	}

	// Mail dispatch happens after the challenge commits, never inside it, so a
	// slow or failing provider cannot roll back or block issuance. Background
	// context: request cancellation must not abort an in-flight send.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		if err := m.sender.Send(sendCtx, email, code, string(purpose)); err != nil {
			log.Printf("otp: mail dispatch to %s failed: %v", email, err)
		}
	}()

	return challenge, nil
}

// Redeem verifies code for (email, purpose). On success the matched challenge
// is marked verified and returned. On any miss, attempts are burned on every
// stored challenge matching the presented code and ErrInvalidOrExpiredOTP is
// returned; the caller cannot tell wrong-code from expired from exhausted.
func (m *Manager) Redeem(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.Challenge, error) {
	if !purpose.Valid() || code == "" {
		return nil, ErrInvalidInput
	}
	if !m.isMasterCode(code) && !ValidCodeFormat(code, m.cfg.CodeLength) {
		return nil, ErrInvalidInput
	}

	hash := HashCode(code)
	now := time.Now().UTC()
	challenge, err := m.repo.FindValid(ctx, email, hash, purpose, now)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		// Burn attempts on anything matching this code, valid or not.
		if err := m.repo.IncrementAttempts(ctx, email, hash, purpose); err != nil {
			log.Printf("otp: attempt increment for %s failed: %v", email, err)
		}
		return nil, ErrInvalidOrExpiredOTP
	}
	if err := m.repo.MarkVerified(ctx, challenge.ID); err != nil {
		return nil, err
	}
	challenge.Verified = true
	return challenge, nil
}

// Cleanup deletes expired or verified challenges and returns how many were removed.
// Scheduling is the caller's concern; Issue also runs it opportunistically.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	return m.repo.DeleteStale(ctx, time.Now().UTC())
}

func (m *Manager) isMasterCode(code string) bool {
	return m.cfg.MasterCode != "" && code == m.cfg.MasterCode
}
