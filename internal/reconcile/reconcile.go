// Package reconcile repairs presence drift and prunes dead sessions in the
// background. Crashed clients never call logout; their sessions expire and
// the reconciler flips the orphaned employees offline.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"hrms-platform/backend/internal/audit"
	identitydomain "hrms-platform/backend/internal/identity/domain"
)

// ActionReconcile is the audit action recorded per completed run.
const ActionReconcile = "session.reconcile"

// SessionStore is the subset of the session repository used by the reconciler.
type SessionStore interface {
	ExpiredSubjects(ctx context.Context, subjectType identitydomain.PrincipalType, now time.Time) ([]string, error)
	CountActiveBySubject(ctx context.Context, subjectID string, subjectType identitydomain.PrincipalType, now time.Time) (int64, error)
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PresenceStore marks employees offline in bulk.
type PresenceStore interface {
	SetOffline(ctx context.Context, employeeIDs []string, at time.Time) (int64, error)
}

// Stats summarizes one reconciliation run.
type Stats struct {
	ExpiredSubjects int
	MarkedOffline   int64
	PrunedSessions  int64
}

// Reconciler runs the two reconciliation stages: presence repair, then
// revoked-session pruning.
type Reconciler struct {
	sessions  SessionStore
	presence  PresenceStore
	auditor   audit.AuditLogger
	retention time.Duration
	now       func() time.Time
}

// NewReconciler wires the reconciler. retention bounds how long revoked
// sessions are kept before pruning.
func NewReconciler(sessions SessionStore, presence PresenceStore, auditor audit.AuditLogger, retention time.Duration) *Reconciler {
	return &Reconciler{
		sessions:  sessions,
		presence:  presence,
		auditor:   auditor,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one reconciliation pass. An employee is flipped offline only
// when every one of their sessions is dead; a single live session keeps them
// online. Prune failures do not fail the run.
func (r *Reconciler) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	now := r.now()

	subjects, err := r.sessions.ExpiredSubjects(ctx, identitydomain.PrincipalEmployee, now)
	if err != nil {
		return stats, fmt.Errorf("list expired subjects: %w", err)
	}
	stats.ExpiredSubjects = len(subjects)

	var orphaned []string
	for _, id := range subjects {
		count, err := r.sessions.CountActiveBySubject(ctx, id, identitydomain.PrincipalEmployee, now)
		if err != nil {
			return stats, fmt.Errorf("count active sessions for %s: %w", id, err)
		}
		if count == 0 {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) > 0 {
		n, err := r.presence.SetOffline(ctx, orphaned, now)
		if err != nil {
			return stats, fmt.Errorf("mark offline: %w", err)
		}
		stats.MarkedOffline = n
	}

	pruned, err := r.sessions.DeleteRevokedBefore(ctx, now.Add(-r.retention))
	if err != nil {
		log.Printf("reconcile: prune revoked sessions: %v", err)
	} else {
		stats.PrunedSessions = pruned
	}

	log.Printf("reconcile: expired_subjects=%d marked_offline=%d pruned=%d",
		stats.ExpiredSubjects, stats.MarkedOffline, stats.PrunedSessions)
	if r.auditor != nil {
		r.auditor.LogEvent(ctx, audit.Event{
			ActorType: "system",
			Action:    ActionReconcile,
			Outcome:   audit.OutcomeSuccess,
			Metadata: fmt.Sprintf(`{"expiredSubjects":%d,"markedOffline":%d,"pruned":%d}`,
				stats.ExpiredSubjects, stats.MarkedOffline, stats.PrunedSessions),
		})
	}
	return stats, nil
}
