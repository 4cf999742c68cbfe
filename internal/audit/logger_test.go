package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"otp-auth-service/internal/audit/domain"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

type mockProducer struct {
	mu      sync.Mutex
	emitted []*domain.AuditLog
}

func (m *mockProducer) Emit(ctx context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitted = append(m.emitted, entry)
	return nil
}

func (m *mockProducer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emitted)
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, "user-1", "otp_redeemed", "auth", "purpose=login")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.ActorID != "user-1" {
		t.Errorf("actor_id = %q, want %q", entry.ActorID, "user-1")
	}
	if entry.Action != "otp_redeemed" {
		t.Errorf("action = %q, want %q", entry.Action, "otp_redeemed")
	}
	if entry.Resource != "auth" {
		t.Errorf("resource = %q, want %q", entry.Resource, "auth")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != "purpose=login" {
		t.Errorf("metadata = %q, want %q", entry.Metadata, "purpose=login")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil, nil)

	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", repo.entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	logger := NewLogger(repo, nil, nil)

	// Best-effort: must not panic or propagate the error.
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil, nil)

	// No-op when repo is nil.
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
}

func TestLogger_LogEvent_StreamsToProducer(t *testing.T) {
	repo := &mockAuditRepo{}
	producer := &mockProducer{}
	logger := NewLogger(repo, nil, producer)

	logger.LogEvent(context.Background(), "user-1", "user_created", "user", "")

	deadline := time.After(2 * time.Second)
	for producer.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("event was not streamed to producer")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEmitAsync_NilSafe(t *testing.T) {
	// Neither call should start a goroutine or panic.
	EmitAsync(nil, &domain.AuditLog{ID: "a"})
	EmitAsync(&mockProducer{}, nil)
}
