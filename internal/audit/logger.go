// Package audit records security-relevant events: every login, session
// extension, logout, and reconciliation outcome, success or failure.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"hrms-platform/backend/internal/audit/domain"
	auditrepo "hrms-platform/backend/internal/audit/repository"
	"hrms-platform/backend/internal/telemetry"
)

// Outcome values shared by all auth audit events. Failure outcomes record the
// real reason server-side even when the client sees a generic error.
const (
	OutcomeSuccess         = "success"
	OutcomeUnknownUser     = "unknown_user"
	OutcomeInactiveAccount = "inactive_account"
	OutcomeWrongPassword   = "wrong_password"
	OutcomeMissingInput    = "missing_input"
	OutcomeInvalidRefresh  = "invalid_refresh"
	OutcomeMissingRefresh  = "missing_refresh"
	OutcomeRotationRace    = "rotation_race"
	OutcomeStoreError      = "store_error"
)

// Event describes one audit entry before persistence. Metadata must never
// contain passwords or raw token material.
type Event struct {
	ActorID   string
	ActorType string
	Action    string
	Outcome   string
	IPAddress string
	UserAgent string
	Metadata  string
}

// AuditLogger writes a single audit event. Used by auth, presence, and
// reconciliation code paths. LogEvent is best-effort: failures are logged and
// do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, e Event)
}

// Logger implements AuditLogger using the audit repository and an optional
// stream emitter.
type Logger struct {
	repo    auditrepo.Repository
	emitter telemetry.EventEmitter
}

// NewLogger returns an AuditLogger that persists to repo and forwards entries
// to emitter when non-nil. Forwarding is asynchronous so slow sinks never
// block the request path.
func NewLogger(repo auditrepo.Repository, emitter telemetry.EventEmitter) *Logger {
	return &Logger{repo: repo, emitter: emitter}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, e Event) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		ActorID:   e.ActorID,
		ActorType: e.ActorType,
		Action:    e.Action,
		Outcome:   e.Outcome,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Metadata:  e.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", e.Action, e.Outcome, err)
		return
	}
	telemetry.EmitAsync(l.emitter, ctx, entry)
}
