package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusLocked  Status = "LOCKED"
	StatusUsed    Status = "USED" // legacy label, treated as LOCKED
	StatusBlocked Status = "BLOCKED"
)

// ParseStatus normalises a stored status label. Unknown labels are returned
// as-is so they fail the Usable check rather than being silently coerced.
func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// Usable reports whether the status is in the bound-equivalence class that
// may pass verification.
func (s Status) Usable() bool {
	switch s {
	case StatusActive, StatusLocked, StatusUsed:
		return true
	default:
		return false
	}
}

// License is the server-side record for an issued license key. It is the
// source of truth for expiry and device binding; the payload inside the key
// is informational.
type License struct {
	ID           string
	Key          string
	Status       Status
	Plan         string
	CustomerName *string
	ExpiresAt    time.Time
	DeviceID     *string // nil until first activation
	ActivatedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l License) IsBound() bool { return l.DeviceID != nil && *l.DeviceID != "" }

// IsExpired reports whether the record has expired at now. A record expiring
// exactly at now counts as expired.
func (l License) IsExpired(now time.Time) bool { return !l.ExpiresAt.After(now) }

func (l License) BoundTo(deviceID string) bool {
	return l.IsBound() && *l.DeviceID == deviceID
}
