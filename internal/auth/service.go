// Package auth orchestrates the OTP login flow: code request, code
// redemption into a token pair plus session, refresh, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"otp-auth-service/internal/audit"
	"otp-auth-service/internal/otp"
	otpdomain "otp-auth-service/internal/otp/domain"
	"otp-auth-service/internal/security"
	sessiondomain "otp-auth-service/internal/session/domain"
	userdomain "otp-auth-service/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
// The OTP sentinels are re-exported so callers depend on one error surface.
var (
	ErrUserNotFound        = otp.ErrUserNotFound
	ErrUserInactive        = otp.ErrUserInactive
	ErrInvalidInput        = otp.ErrInvalidInput
	ErrInvalidOrExpiredOTP = otp.ErrInvalidOrExpiredOTP

	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("expired token")
	ErrSessionInvalid = errors.New("session revoked or expired")
	// ErrServiceUnavailable wraps persistence and signing failures so callers
	// can distinguish "you did something wrong" from "we are broken".
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AuthResult holds the outcome of RedeemCode or Refresh.
// Refresh leaves RefreshToken empty: the presented token stays valid.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *userdomain.User
}

// CodeManager is the OTP surface the auth service needs.
type CodeManager interface {
	Issue(ctx context.Context, email string, purpose otpdomain.Purpose) (*otpdomain.Challenge, error)
	Redeem(ctx context.Context, email, code string, purpose otpdomain.Purpose) (*otpdomain.Challenge, error)
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionManager is the session surface the auth service needs.
type SessionManager interface {
	Create(ctx context.Context, userID, refreshToken, deviceInfo, ipAddress string, ttl time.Duration) (*sessiondomain.Session, error)
	FindActive(ctx context.Context, refreshToken string) (*sessiondomain.Session, error)
	Touch(ctx context.Context, sessionID string) error
	Deactivate(ctx context.Context, refreshToken string) error
	DeactivateAll(ctx context.Context, userID string) error
}

// Service implements the OTP login protocol.
type Service struct {
	codes    CodeManager
	users    UserRepo
	sessions SessionManager
	tokens   *security.TokenProvider
	auditor  audit.AuditLogger
}

// NewService returns a Service with the given dependencies. auditor may be nil.
func NewService(codes CodeManager, users UserRepo, sessions SessionManager, tokens *security.TokenProvider, auditor audit.AuditLogger) *Service {
	return &Service{codes: codes, users: users, sessions: sessions, tokens: tokens, auditor: auditor}
}

// RequestCode validates the email and asks the OTP manager to issue and
// dispatch a code. The code itself is never returned.
func (s *Service) RequestCode(ctx context.Context, email string, purpose otpdomain.Purpose) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	_, err := s.codes.Issue(ctx, email, purpose)
	if err != nil {
		if isAuthSentinel(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	s.logEvent(ctx, "", "otp_requested", "auth", "purpose="+string(purpose))
	return nil
}

// RedeemCode exchanges a valid code for an access/refresh token pair and a
// new session. OTP failures surface as the single ErrInvalidOrExpiredOTP so
// callers cannot distinguish wrong, expired, and exhausted codes.
func (s *Service) RedeemCode(ctx context.Context, email, code string, purpose otpdomain.Purpose, deviceInfo, ip string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.codes.Redeem(ctx, email, code, purpose); err != nil {
		if isAuthSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	user.LastLoginAt = &now

	refreshToken, _, err := s.tokens.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if _, err := s.sessions.Create(ctx, user.ID, refreshToken, deviceInfo, ip, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	s.logEvent(ctx, user.ID, "otp_redeemed", "auth", "purpose="+string(purpose))
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		User:         user,
	}, nil
}

// Refresh verifies the refresh token, requires a live session for it, and
// issues a new access token. The refresh token is NOT rotated: the presented
// token remains the session credential until expiry or logout.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrTokenInvalid
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	// Session check is separate from signature verification: a revoked
	// session fails here even though the token still verifies.
	sess, err := s.sessions.FindActive(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if sess == nil {
		return nil, ErrSessionInvalid
	}
	if err := s.sessions.Touch(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if user == nil {
		return nil, ErrSessionInvalid
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	s.logEvent(ctx, user.ID, "token_refreshed", "auth", "session="+sess.ID)
	return &AuthResult{
		AccessToken: accessToken,
		ExpiresAt:   accessExp,
		User:        user,
	}, nil
}

// Logout revokes the session for the refresh token. Idempotent: unknown,
// malformed, or already-revoked tokens all succeed.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	var actorID string
	if claims, err := s.tokens.ValidateRefresh(refreshToken); err == nil {
		actorID = claims.Subject
	}
	if err := s.sessions.Deactivate(ctx, refreshToken); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	s.logEvent(ctx, actorID, "logout", "session", "")
	return nil
}

// LogoutAll revokes every session for the user. Used by the logout-all
// endpoint and by admin deactivation.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeactivateAll(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	s.logEvent(ctx, userID, "logout_all", "session", "")
	return nil
}

func (s *Service) logEvent(ctx context.Context, actorID, action, resource, metadata string) {
	if s.auditor != nil {
		s.auditor.LogEvent(ctx, actorID, action, resource, metadata)
	}
}

// isAuthSentinel reports whether err is one of the protocol-level failures
// that must reach the caller unwrapped.
func isAuthSentinel(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUserInactive) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidOrExpiredOTP)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}
