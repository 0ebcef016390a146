package domain

import (
	"errors"
	"time"
)

// Employee is the HR record for a staff member. Credentials live on the linked
// Account, not here.
type Employee struct {
	ID            string
	OfficialEmail string
	FirstName     string
	LastName      string
	Status        EmployeeStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Validate validates the employee for persistence. Returns an error describing the first validation failure.
func (e *Employee) Validate() error {
	if e.OfficialEmail == "" {
		return errors.New("official email is required")
	}
	if e.FirstName == "" {
		return errors.New("first name is required")
	}
	if e.Status == "" {
		e.Status = EmployeeStatusActive
	}
	return nil
}
