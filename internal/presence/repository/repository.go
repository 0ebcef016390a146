package repository

import (
	"context"
	"time"

	"hrms-platform/backend/internal/presence/domain"
)

// Repository defines persistence for employee presence. One row per employee;
// concurrent updates for the same employee are last-write-wins on updated_at.
type Repository interface {
	Get(ctx context.Context, employeeID string) (*domain.Presence, error)
	Upsert(ctx context.Context, employeeID string, status domain.Status, at time.Time) error
	// SetOffline marks the given employees offline, skipping rows that are
	// already offline. Returns the number of rows changed.
	SetOffline(ctx context.Context, employeeIDs []string, at time.Time) (int64, error)
}
