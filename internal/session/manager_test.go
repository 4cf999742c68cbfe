package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"otp-auth-service/internal/security"
	"otp-auth-service/internal/session/domain"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) FindActiveByTokenHash(_ context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshTokenHash == tokenHash && s.Active && s.ExpiresAt.After(now) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		t := at
		s.LastUsedAt = &t
	}
	return nil
}

func (r *memSessionRepo) DeactivateByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshTokenHash == tokenHash {
			s.Active = false
		}
	}
	return nil
}

func (r *memSessionRepo) DeactivateAllByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.Active = false
		}
	}
	return nil
}

func TestCreateStoresHashNotToken(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)

	s, err := m.Create(context.Background(), "user-1", "raw-refresh-token", "test-agent", "10.0.0.1", time.Hour)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.RefreshTokenHash == "raw-refresh-token" {
		t.Fatal("raw token persisted instead of hash")
	}
	if want := security.HashRefreshToken("raw-refresh-token"); s.RefreshTokenHash != want {
		t.Fatalf("hash = %q, want %q", s.RefreshTokenHash, want)
	}
	if !s.Active {
		t.Fatal("new session should be active")
	}
	if s.DeviceInfo != "test-agent" || s.IPAddress != "10.0.0.1" {
		t.Fatalf("metadata not stored: %+v", s)
	}
}

func TestFindActiveMatchesOnlyLiveSessions(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)
	ctx := context.Background()

	if _, err := m.Create(ctx, "user-1", "token-a", "", "", time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := m.FindActive(ctx, "token-a")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}

	got, err = m.FindActive(ctx, "token-unknown")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got != nil {
		t.Fatalf("unknown token matched session %s", got.ID)
	}
}

func TestFindActiveIgnoresExpiredSession(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)
	ctx := context.Background()

	if _, err := m.Create(ctx, "user-1", "token-a", "", "", time.Nanosecond); err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	got, err := m.FindActive(ctx, "token-a")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got != nil {
		t.Fatal("expired session should not be found")
	}
}

func TestDeactivateRevokesAndIsIdempotent(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)
	ctx := context.Background()

	if _, err := m.Create(ctx, "user-1", "token-a", "", "", time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Deactivate(ctx, "token-a"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	got, err := m.FindActive(ctx, "token-a")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got != nil {
		t.Fatal("revoked session should not be found")
	}

	// Second revoke of the same token and a revoke of a token that never
	// existed both succeed.
	if err := m.Deactivate(ctx, "token-a"); err != nil {
		t.Fatalf("repeat Deactivate: %v", err)
	}
	if err := m.Deactivate(ctx, "token-never-issued"); err != nil {
		t.Fatalf("Deactivate unknown token: %v", err)
	}
}

func TestDeactivateAllRevokesOnlyThatUser(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)
	ctx := context.Background()

	if _, err := m.Create(ctx, "user-1", "token-a", "", "", time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx, "user-1", "token-b", "", "", time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx, "user-2", "token-c", "", "", time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.DeactivateAll(ctx, "user-1"); err != nil {
		t.Fatalf("DeactivateAll: %v", err)
	}

	for _, token := range []string{"token-a", "token-b"} {
		got, err := m.FindActive(ctx, token)
		if err != nil {
			t.Fatalf("FindActive(%s): %v", token, err)
		}
		if got != nil {
			t.Fatalf("session for %s should be revoked", token)
		}
	}
	got, err := m.FindActive(ctx, "token-c")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got == nil {
		t.Fatal("other user's session should stay active")
	}
}

func TestTouchSetsLastUsed(t *testing.T) {
	repo := newMemSessionRepo()
	m := NewManager(repo)
	ctx := context.Background()

	s, err := m.Create(ctx, "user-1", "token-a", "", "", time.Hour)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.LastUsedAt != nil {
		t.Fatal("new session should have no last-used timestamp")
	}

	if err := m.Touch(ctx, s.ID); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	repo.mu.Lock()
	stored := repo.sessions[s.ID]
	repo.mu.Unlock()
	if stored.LastUsedAt == nil {
		t.Fatal("Touch did not record last-used timestamp")
	}
}
