package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	ActorID   string // user who performed the action; empty for anonymous events
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
