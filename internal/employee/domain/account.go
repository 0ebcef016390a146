package domain

import "time"

// Account holds the login credentials and role for an employee, 1:1 with Employee.
type Account struct {
	ID           string
	EmployeeID   string
	PasswordHash string
	Role         string
	Status       AccountStatus
	LastLoginAt  *time.Time // nil when the employee has never logged in
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Usable reports whether the account may authenticate.
func (a *Account) Usable() bool {
	return a != nil && a.Status == AccountStatusActive && a.PasswordHash != ""
}
