package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	identitydomain "hrms-platform/backend/internal/identity/domain"
	"hrms-platform/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session to the database. The session must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, subject_id, subject_type, token_hash, user_agent, ip_address, expires_at, revoked_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.SubjectID, s.SubjectType, s.TokenHash,
		nullString(s.UserAgent), nullString(s.IPAddress),
		s.ExpiresAt, nullTime(s.RevokedAt), s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByTokenHash returns the session for the given token hash, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, subject_id, subject_type, token_hash, user_agent, ip_address, expires_at, revoked_at, created_at
		 FROM sessions WHERE token_hash = $1`, hash)

	var s domain.Session
	var userAgent, ipAddress sql.NullString
	var revokedAt sql.NullTime
	err := row.Scan(&s.ID, &s.SubjectID, &s.SubjectType, &s.TokenHash,
		&userAgent, &ipAddress, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.UserAgent = userAgent.String
	s.IPAddress = ipAddress.String
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return &s, nil
}

// Revoke marks the session with the given token hash as revoked at the given time.
// Affects zero rows for unknown or already-revoked hashes; that is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, hash string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL",
		hash, at)
	if err != nil {
		return 0, fmt.Errorf("revoke session: %w", err)
	}
	return res.RowsAffected()
}

// Rotate replaces the token hash and expiry of the live session identified by
// oldHash in a single conditional UPDATE. Two concurrent rotations of the same
// hash race safely: exactly one observes rowsAffected=1.
func (r *PostgresRepository) Rotate(ctx context.Context, oldHash, newHash string, newExpiry time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET token_hash = $2, expires_at = $3 WHERE token_hash = $1 AND revoked_at IS NULL",
		oldHash, newHash, newExpiry)
	if err != nil {
		return 0, fmt.Errorf("rotate session: %w", err)
	}
	return res.RowsAffected()
}

// DeleteRevokedBefore deletes sessions revoked before cutoff and returns the count.
func (r *PostgresRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE revoked_at IS NOT NULL AND revoked_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete revoked sessions: %w", err)
	}
	return res.RowsAffected()
}

// ExpiredSubjects returns the distinct subject IDs of the given type with at
// least one expired, unrevoked session at time now.
func (r *PostgresRepository) ExpiredSubjects(ctx context.Context, subjectType identitydomain.PrincipalType, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT subject_id FROM sessions
		 WHERE subject_type = $1 AND expires_at < $2 AND revoked_at IS NULL`,
		subjectType, now)
	if err != nil {
		return nil, fmt.Errorf("expired subjects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("expired subjects: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CountActiveBySubject returns how many live sessions the subject has at time now.
func (r *PostgresRepository) CountActiveBySubject(ctx context.Context, subjectID string, subjectType identitydomain.PrincipalType, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions
		 WHERE subject_id = $1 AND subject_type = $2 AND expires_at >= $3 AND revoked_at IS NULL`,
		subjectID, subjectType, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
