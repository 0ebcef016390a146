// Package telemetry forwards audit entries to external sinks (Kafka, OTel logs).
package telemetry

import (
	"context"

	auditdomain "hrms-platform/backend/internal/audit/domain"
)

// EventEmitter emits audit entries to an external sink. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, entry *auditdomain.AuditLog) error
}
