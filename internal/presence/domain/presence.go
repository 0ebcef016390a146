package domain

import "time"

// Status is an employee's live availability indicator, independent of any
// specific session.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusAway    Status = "away"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway:
		return true
	}
	return false
}

// Presence is the single per-employee status row (upsert semantics, not append).
type Presence struct {
	EmployeeID string
	Status     Status
	UpdatedAt  time.Time
}
