package devotp

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "a@x.com", "login", "123456", time.Now().Add(time.Minute))

	code, ok := s.Get(ctx, "a@x.com", "login")
	if !ok || code != "123456" {
		t.Fatalf("Get = %q, %v; want 123456, true", code, ok)
	}
	if _, ok := s.Get(ctx, "a@x.com", "registration"); ok {
		t.Error("different purpose should not match")
	}
	if _, ok := s.Get(ctx, "b@x.com", "login"); ok {
		t.Error("different email should not match")
	}
}

func TestMemoryStore_NewerCodeWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "a@x.com", "login", "111111", time.Now().Add(time.Minute))
	s.Put(ctx, "a@x.com", "login", "222222", time.Now().Add(time.Minute))

	code, ok := s.Get(ctx, "a@x.com", "login")
	if !ok || code != "222222" {
		t.Fatalf("Get = %q, %v; want newest code", code, ok)
	}
}

func TestMemoryStore_Expired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "a@x.com", "login", "123456", time.Now().Add(time.Minute))
	s.nowF = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, ok := s.Get(ctx, "a@x.com", "login"); ok {
		t.Error("expired code should not be returned")
	}
	// Expired entry is dropped; a second Get misses the map entirely.
	s.mu.RLock()
	_, present := s.m[key("a@x.com", "login")]
	s.mu.RUnlock()
	if present {
		t.Error("expired entry should be deleted on read")
	}
}
