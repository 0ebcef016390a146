package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	auditdomain "hrms-platform/backend/internal/audit/domain"
	"hrms-platform/backend/internal/telemetry"
)

// NewEventEmitter returns an EventEmitter that sends audit entries as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("hrms.audit")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *auditdomain.AuditLog) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the audit entry to an OTel log record and emits it. Best-effort; errors are logged.
func (e *otelEmitter) Emit(ctx context.Context, entry *auditdomain.AuditLog) error {
	if entry == nil {
		return nil
	}
	rec := otellog.Record{}
	if !entry.CreatedAt.IsZero() {
		rec.SetTimestamp(entry.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if entry.Metadata != "" {
		rec.SetBody(otellog.StringValue(entry.Metadata))
	}
	if entry.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", entry.ActorID))
	}
	if entry.ActorType != "" {
		rec.AddAttributes(otellog.String("actor_type", entry.ActorType))
	}
	if entry.Action != "" {
		rec.AddAttributes(otellog.String("action", entry.Action))
	}
	if entry.Outcome != "" {
		rec.AddAttributes(otellog.String("outcome", entry.Outcome))
	}
	if entry.IPAddress != "" {
		rec.AddAttributes(otellog.String("ip_address", entry.IPAddress))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
