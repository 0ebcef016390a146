// Package service implements presence reads and explicit status updates.
// Login and logout flip presence implicitly; this service backs the manual
// status endpoint (e.g. an employee marking themselves away).
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrms-platform/backend/internal/audit"
	"hrms-platform/backend/internal/presence/domain"
)

// ErrInvalidStatus is returned when the requested status is not one of
// online, offline, or away.
var ErrInvalidStatus = errors.New("invalid presence status")

// ActionUpdate is the audit action for explicit presence changes.
const ActionUpdate = "presence.update"

// Store is the subset of the presence repository used by the service.
type Store interface {
	Get(ctx context.Context, employeeID string) (*domain.Presence, error)
	Upsert(ctx context.Context, employeeID string, status domain.Status, at time.Time) error
}

// PresenceService validates and persists explicit presence updates.
type PresenceService struct {
	store   Store
	auditor audit.AuditLogger
	now     func() time.Time
}

// NewPresenceService wires the presence service.
func NewPresenceService(store Store, auditor audit.AuditLogger) *PresenceService {
	return &PresenceService{
		store:   store,
		auditor: auditor,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the employee's presence row, or nil if the employee has never
// had presence recorded.
func (s *PresenceService) Get(ctx context.Context, employeeID string) (*domain.Presence, error) {
	return s.store.Get(ctx, employeeID)
}

// Update sets the employee's presence to status. Concurrent updates for the
// same employee are last-write-wins.
func (s *PresenceService) Update(ctx context.Context, employeeID string, status domain.Status, ip, userAgent string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.store.Upsert(ctx, employeeID, status, s.now()); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	if s.auditor != nil {
		s.auditor.LogEvent(ctx, audit.Event{
			ActorID:   employeeID,
			ActorType: "employee",
			Action:    ActionUpdate,
			Outcome:   audit.OutcomeSuccess,
			IPAddress: ip,
			UserAgent: userAgent,
			Metadata:  fmt.Sprintf(`{"status":%q}`, status),
		})
	}
	return nil
}
