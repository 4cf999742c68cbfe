package domain

import "time"

// Session is one refresh-token grant. Only refresh sessions are tracked;
// access tokens are never persisted, so revocation works by killing the session.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string // SHA-256 hash of the refresh token; the raw value is never stored
	DeviceInfo       string // client/device descriptor, e.g. User-Agent
	IPAddress        string
	Active           bool
	ExpiresAt        time.Time
	LastUsedAt       *time.Time // nil until the first refresh
	CreatedAt        time.Time
}

// Usable reports whether the session can honor a refresh at now.
func (s *Session) Usable(now time.Time) bool {
	return s != nil && s.Active && s.ExpiresAt.After(now)
}
