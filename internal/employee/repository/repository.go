package repository

import (
	"context"
	"time"

	"hrms-platform/backend/internal/employee/domain"
)

// Repository defines persistence for employees and their accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByOfficialEmail(ctx context.Context, email string) (*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) error
	GetAccountByEmployeeID(ctx context.Context, employeeID string) (*domain.Account, error)
	CreateAccount(ctx context.Context, a *domain.Account) error
	TouchLastLogin(ctx context.Context, employeeID string, at time.Time) error
}
