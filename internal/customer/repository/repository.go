package repository

import (
	"context"
	"time"

	"hrms-platform/backend/internal/customer/domain"
)

// Repository defines persistence for customers and their portal access records.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) error
	GetAccessByCustomerID(ctx context.Context, customerID string) (*domain.Access, error)
	CreateAccess(ctx context.Context, a *domain.Access) error
	TouchLastLogin(ctx context.Context, customerID string, at time.Time) error
}
