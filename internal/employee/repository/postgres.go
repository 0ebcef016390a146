package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hrms-platform/backend/internal/employee/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an employee repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const employeeColumns = "id, official_email, first_name, last_name, status, created_at, updated_at"

// GetByID returns the employee for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1", id)
	return scanEmployee(row)
}

// GetByOfficialEmail returns the employee for the given official email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByOfficialEmail(ctx context.Context, email string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE official_email = $1", email)
	return scanEmployee(row)
}

// Create persists the employee to the database. The employee must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, official_email, first_name, last_name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.OfficialEmail, e.FirstName, e.LastName, e.Status, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// GetAccountByEmployeeID returns the account linked to the employee, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetAccountByEmployeeID(ctx context.Context, employeeID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, employee_id, password_hash, role, status, last_login_at, created_at, updated_at
		 FROM employee_accounts WHERE employee_id = $1`, employeeID)

	var a domain.Account
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.EmployeeID, &a.PasswordHash, &a.Role, &a.Status, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	return &a, nil
}

// CreateAccount persists the account to the database. The account must have ID and EmployeeID set.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employee_accounts (id, employee_id, password_hash, role, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.EmployeeID, a.PasswordHash, a.Role, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// TouchLastLogin sets the account's last-login timestamp for the given employee.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, employeeID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE employee_accounts SET last_login_at = $2, updated_at = $2 WHERE employee_id = $1",
		employeeID, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.OfficialEmail, &e.FirstName, &e.LastName, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}
