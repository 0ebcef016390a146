// Package producer defines the interface for publishing audit entries to a stream (e.g. Kafka).
package producer

import (
	"context"

	auditdomain "hrms-platform/backend/internal/audit/domain"
)

// Producer publishes audit entries. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single audit entry. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, entry *auditdomain.AuditLog) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
