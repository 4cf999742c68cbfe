package repository

import (
	"context"

	"otp-auth-service/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error)
}
