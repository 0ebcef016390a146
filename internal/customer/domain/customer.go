package domain

import (
	"errors"
	"time"
)

// Customer is a portal customer. Credentials live on the linked Access record.
type Customer struct {
	ID          string
	Email       string
	CompanyName string
	Status      CustomerStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Validate validates the customer for persistence.
func (c *Customer) Validate() error {
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.Status == "" {
		c.Status = CustomerStatusActive
	}
	return nil
}

// Access holds the portal login credentials for a customer, 1:1 with Customer.
type Access struct {
	ID           string
	CustomerID   string
	PasswordHash string
	Status       AccessStatus
	LastLoginAt  *time.Time // nil when the customer has never logged in
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AccessStatus string

const (
	AccessStatusActive   AccessStatus = "active"
	AccessStatusInactive AccessStatus = "inactive"
)

// Usable reports whether the access record may authenticate.
func (a *Access) Usable() bool {
	return a != nil && a.Status == AccessStatusActive && a.PasswordHash != ""
}
