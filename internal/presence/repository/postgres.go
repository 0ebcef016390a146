package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hrms-platform/backend/internal/presence/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a presence repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the presence row for the employee, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, employeeID string) (*domain.Presence, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT employee_id, status, updated_at FROM employee_presence WHERE employee_id = $1", employeeID)

	var p domain.Presence
	err := row.Scan(&p.EmployeeID, &p.Status, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get presence: %w", err)
	}
	return &p, nil
}

// Upsert inserts or updates the employee's presence row.
func (r *PostgresRepository) Upsert(ctx context.Context, employeeID string, status domain.Status, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employee_presence (employee_id, status, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (employee_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		employeeID, status, at)
	if err != nil {
		return fmt.Errorf("upsert presence: %w", err)
	}
	return nil
}

// SetOffline marks the given employees offline in one statement, skipping rows
// already offline. Returns the number of rows changed.
func (r *PostgresRepository) SetOffline(ctx context.Context, employeeIDs []string, at time.Time) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(employeeIDs))
	args := make([]interface{}, 0, len(employeeIDs)+2)
	args = append(args, domain.StatusOffline, at)
	for i, id := range employeeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}
	query := fmt.Sprintf(
		"UPDATE employee_presence SET status = $1, updated_at = $2 WHERE employee_id IN (%s) AND status <> $1",
		strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set offline: %w", err)
	}
	return res.RowsAffected()
}
