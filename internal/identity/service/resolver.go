// Package service resolves login identifiers to principals across the two
// disjoint identity stores (employees and portal customers).
package service

import (
	"context"
	"strings"

	customerdomain "hrms-platform/backend/internal/customer/domain"
	employeedomain "hrms-platform/backend/internal/employee/domain"
	"hrms-platform/backend/internal/identity/domain"
)

// EmployeeDirectory is the minimal employee repository needed by the resolver.
type EmployeeDirectory interface {
	GetByOfficialEmail(ctx context.Context, email string) (*employeedomain.Employee, error)
	GetAccountByEmployeeID(ctx context.Context, employeeID string) (*employeedomain.Account, error)
}

// CustomerDirectory is the minimal customer repository needed by the resolver.
type CustomerDirectory interface {
	GetByEmail(ctx context.Context, email string) (*customerdomain.Customer, error)
	GetAccessByCustomerID(ctx context.Context, customerID string) (*customerdomain.Access, error)
}

// Resolver maps a login identifier to at most one principal. Employee lookup
// runs first; an email matching both stores resolves as an employee.
type Resolver struct {
	employees EmployeeDirectory
	customers CustomerDirectory
}

// NewResolver returns a Resolver over the given directories.
func NewResolver(employees EmployeeDirectory, customers CustomerDirectory) *Resolver {
	return &Resolver{employees: employees, customers: customers}
}

// Resolve returns the resolution for loginID, or nil if no principal matches.
// A matched employee without an account record resolves to nil (the employee
// cannot authenticate), and customer resolution is not attempted in that case:
// the employee store owns the identifier.
func (r *Resolver) Resolve(ctx context.Context, loginID string) (*domain.Resolution, error) {
	loginID = strings.TrimSpace(strings.ToLower(loginID))
	if loginID == "" {
		return nil, nil
	}

	emp, err := r.employees.GetByOfficialEmail(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if emp != nil {
		account, err := r.employees.GetAccountByEmployeeID(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, nil
		}
		return &domain.Resolution{
			Type:         domain.PrincipalEmployee,
			SubjectID:    emp.ID,
			Email:        emp.OfficialEmail,
			Role:         account.Role,
			PasswordHash: account.PasswordHash,
			Active:       emp.Status == employeedomain.EmployeeStatusActive && account.Usable(),
		}, nil
	}

	cust, err := r.customers.GetByEmail(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, nil
	}
	access, err := r.customers.GetAccessByCustomerID(ctx, cust.ID)
	if err != nil {
		return nil, err
	}
	if access == nil {
		return nil, nil
	}
	return &domain.Resolution{
		Type:         domain.PrincipalCustomer,
		SubjectID:    cust.ID,
		Email:        cust.Email,
		Role:         domain.CustomerRole,
		PasswordHash: access.PasswordHash,
		Active:       cust.Status == customerdomain.CustomerStatusActive && access.Usable(),
	}, nil
}
