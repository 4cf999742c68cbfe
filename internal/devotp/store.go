// Package devotp provides an in-memory store for plaintext OTP codes by
// (email, purpose), used only when dev OTP mode is enabled (GET /dev/otp).
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain OTP codes for dev-only retrieval. Not used in production.
type Store interface {
	// Put stores code for (email, purpose) until expiresAt. Called when issuing a challenge in dev mode.
	Put(ctx context.Context, email, purpose, code string, expiresAt time.Time)
	// Get returns the code for (email, purpose) if present and not expired. Returns ok false if missing or expired.
	Get(ctx context.Context, email, purpose string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

func key(email, purpose string) string { return email + "|" + purpose }

// Put stores code for (email, purpose) until expiresAt. A later Put for the
// same key overwrites the earlier code, matching most-recent-wins redemption.
func (s *MemoryStore) Put(ctx context.Context, email, purpose, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key(email, purpose)] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for (email, purpose) if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, email, purpose string) (string, bool) {
	k := key(email, purpose)
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, k)
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
