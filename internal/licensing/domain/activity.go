package domain

import "time"

// Activity kinds written to the audit log.
const (
	ActivityLicenseRegistered   = "license_registered"
	ActivityLicenseActivated    = "license_activated"
	ActivityDeviceMismatch      = "device_mismatch"
	ActivityLicenseBlocked      = "license_blocked"
	ActivityLicenseUnblocked    = "license_unblocked"
	ActivityLicenseReset        = "license_reset"
	ActivityLicenseExtended     = "license_extended"
	ActivityNotificationSent    = "notification_sent"
	ActivityNotificationFailed  = "notification_failed"
	ActivityNotificationDropped = "notification_dropped"
)

// ActivityEntry is an append-only audit record. License keys are never stored
// raw: LicenseMask is for display and LicenseHash for correlation.
type ActivityEntry struct {
	ID          string
	Kind        string
	LicenseMask string
	LicenseHash string
	Actor       string
	Details     map[string]string
	CreatedAt   time.Time
}
