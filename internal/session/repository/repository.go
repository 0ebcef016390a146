package repository

import (
	"context"
	"time"

	identitydomain "hrms-platform/backend/internal/identity/domain"
	"hrms-platform/backend/internal/session/domain"
)

// Repository defines persistence for refresh-token sessions. All mutations are
// row-scoped (keyed by token hash or subject); implementations must not take
// table-wide locks.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	// Revoke sets revoked_at for the session with the given hash. Idempotent:
	// revoking an already-revoked or unknown hash affects zero rows and is not
	// an error.
	Revoke(ctx context.Context, hash string, at time.Time) (int64, error)
	// Rotate atomically replaces the token hash and expiry of the live session
	// identified by oldHash. Zero rows affected means the session is no longer
	// valid (revoked, expired lineage, or a concurrent rotation won); callers
	// must fail closed.
	Rotate(ctx context.Context, oldHash, newHash string, newExpiry time.Time) (int64, error)
	// DeleteRevokedBefore bulk-deletes sessions revoked before cutoff.
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// ExpiredSubjects returns the distinct subject IDs of the given type that
	// have at least one expired, unrevoked session at time now.
	ExpiredSubjects(ctx context.Context, subjectType identitydomain.PrincipalType, now time.Time) ([]string, error)
	// CountActiveBySubject returns how many live (unexpired, unrevoked)
	// sessions the subject has at time now.
	CountActiveBySubject(ctx context.Context, subjectID string, subjectType identitydomain.PrincipalType, now time.Time) (int64, error)
}
