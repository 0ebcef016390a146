package domain

// PrincipalType distinguishes the two disjoint identity variants a login
// identifier can resolve to.
type PrincipalType string

const (
	PrincipalEmployee PrincipalType = "employee"
	PrincipalCustomer PrincipalType = "customer"
)

// Resolution is the outcome of resolving a login identifier: which variant
// matched, the principal's UUID, and the credential record's fields needed for
// authentication.
type Resolution struct {
	Type         PrincipalType
	SubjectID    string
	Email        string
	Role         string // fixed to "customer" for customer principals
	PasswordHash string
	Active       bool // principal and its credential record are both active
}

// CustomerRole is the fixed role carried by customer principals.
const CustomerRole = "customer"
