package domain

import "time"

// AuditLog is one security-relevant event: who did what, from where, and how
// it ended. Passwords and raw token material are never recorded; token hashes
// appear only as 8-character prefixes in Metadata.
type AuditLog struct {
	ID        string
	ActorID   string // principal UUID when known; empty for failed logins
	ActorType string // "employee", "customer", or "" when unknown
	Action    string // e.g. "auth.login", "auth.extend", "auth.logout"
	Outcome   string // "success" or a failure reason for server-side forensics
	IPAddress string
	UserAgent string
	Metadata  string // JSON blob with correlation fields (e.g. token hash prefix)
	CreatedAt time.Time
}
