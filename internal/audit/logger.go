// Package audit records who did what to which resource. Writes are
// best-effort: an audit failure never fails the operation being audited.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"otp-auth-service/internal/audit/domain"
	auditrepo "otp-auth-service/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, actorID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional IP
// extractor, and an optional stream producer for downstream consumers.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	producer    Producer
}

// NewLogger returns an AuditLogger that persists to repo, uses ipExtractor for
// client IP, and mirrors each event to producer. ipExtractor may be nil; then
// IP is recorded as "unknown". producer may be nil to disable streaming.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, producer Producer) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, producer: producer}
}

// LogEvent writes one audit log entry and streams it asynchronously.
// Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, actorID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
	EmitAsync(l.producer, entry)
}
