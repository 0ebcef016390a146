package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher verifies login passwords against the password_hash stored on
// employee accounts and customer access rows. bcrypt under the hood; raw
// passwords must never be logged or persisted.
type Hasher struct {
	Cost int
}

// NewHasher clamps cost into bcrypt's valid range. Zero or negative selects
// the bcrypt default; BCRYPT_COST in config feeds this.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces the password_hash value stored alongside a credential.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare checks a login password against a stored hash. Any error, including
// bcrypt.ErrMismatchedHashAndPassword, means the login must be rejected.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
