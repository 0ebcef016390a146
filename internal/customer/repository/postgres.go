package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hrms-platform/backend/internal/customer/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a customer repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const customerColumns = "id, email, company_name, status, created_at, updated_at"

// GetByID returns the customer for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	return scanCustomer(row)
}

// GetByEmail returns the customer for the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE email = $1", email)
	return scanCustomer(row)
}

// Create persists the customer to the database. The customer must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, email, company_name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Email, c.CompanyName, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// GetAccessByCustomerID returns the access record linked to the customer, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetAccessByCustomerID(ctx context.Context, customerID string) (*domain.Access, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, password_hash, status, last_login_at, created_at, updated_at
		 FROM customer_access WHERE customer_id = $1`, customerID)

	var a domain.Access
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.CustomerID, &a.PasswordHash, &a.Status, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get access: %w", err)
	}
	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	return &a, nil
}

// CreateAccess persists the access record to the database. The record must have ID and CustomerID set.
func (r *PostgresRepository) CreateAccess(ctx context.Context, a *domain.Access) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customer_access (id, customer_id, password_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.CustomerID, a.PasswordHash, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create access: %w", err)
	}
	return nil
}

// TouchLastLogin sets the access record's last-login timestamp for the given customer.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, customerID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE customer_access SET last_login_at = $2, updated_at = $2 WHERE customer_id = $1",
		customerID, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func scanCustomer(row *sql.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.CompanyName, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
