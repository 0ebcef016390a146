package domain

import (
	"time"

	identitydomain "hrms-platform/backend/internal/identity/domain"
)

// Session represents one issued refresh-token lineage, keyed by the hash of
// the current secret. Rotation replaces TokenHash and ExpiresAt in place; the
// row is never duplicated, which makes each refresh secret single-use.
type Session struct {
	ID          string
	SubjectID   string
	SubjectType identitydomain.PrincipalType
	TokenHash   string // SHA-256 of the current refresh secret; the raw secret is never stored
	UserAgent   string // optional, proxy-derived
	IPAddress   string // optional, proxy-derived
	ExpiresAt   time.Time
	RevokedAt   *time.Time // nil when not revoked
	CreatedAt   time.Time
}

// Live reports whether the session is neither revoked nor expired at t.
func (s *Session) Live(t time.Time) bool {
	return s != nil && s.RevokedAt == nil && s.ExpiresAt.After(t)
}
