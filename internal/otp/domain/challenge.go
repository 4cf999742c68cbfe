package domain

import "time"

// Purpose is the intended use of a challenge.
type Purpose string

const (
	PurposeLogin        Purpose = "login"
	PurposeRegistration Purpose = "registration"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeLogin || p == PurposeRegistration
}

// Challenge is one issued OTP, bound to an email and purpose (stored in otp_challenges).
// Challenges reference the email rather than a user id, since a challenge may
// precede user verification. Codes are stored hashed; the plaintext only lives
// in the delivery path.
//
// A challenge moves Issued → Verified, or dies by expiry or by exhausting
// attempts. No transition reverses.
type Challenge struct {
	ID          string
	Email       string
	CodeHash    string
	Purpose     Purpose
	Verified    bool
	Attempts    int
	MaxAttempts int
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Redeemable reports whether the challenge can still be verified at now.
func (c *Challenge) Redeemable(now time.Time) bool {
	return c != nil && !c.Verified && c.Attempts < c.MaxAttempts && c.ExpiresAt.After(now)
}
