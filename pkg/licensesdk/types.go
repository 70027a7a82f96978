package licensesdk

import "time"

// ============================================================================
// Envelopes
// ============================================================================

// ErrorResponse is returned by every endpoint on failure.
type ErrorResponse struct {
	// OK is always false.
	OK bool `json:"ok"`

	// Error is the stable failure code, e.g. "DEVICE_MISMATCH".
	Error string `json:"error"`

	// Status is the record status; present only with BLOCKED.
	Status string `json:"status,omitempty"`
}

// ============================================================================
// License Types
// ============================================================================

// VerifyRequest is the body of POST /api/license/verify.
type VerifyRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// ActivateRequest is the body of POST /api/license/activate.
type ActivateRequest struct {
	LicenseKey   string `json:"licenseKey"`
	DeviceID     string `json:"deviceId"`
	CustomerName string `json:"customerName,omitempty"`
}

// LicenseResponse is returned by a successful verify or activate.
type LicenseResponse struct {
	OK          bool       `json:"ok"`
	Plan        string     `json:"plan"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	DeviceID    *string    `json:"deviceId,omitempty"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	Status      string     `json:"status"`
}

// ============================================================================
// Admin Types
// ============================================================================

// License is the admin view of a license record.
type License struct {
	ID           string     `json:"id"`
	LicenseKey   string     `json:"licenseKey"`
	Masked       string     `json:"masked"`
	Status       string     `json:"status"`
	Plan         string     `json:"plan"`
	CustomerName *string    `json:"customerName,omitempty"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Expired      bool       `json:"expired"`
	DeviceID     *string    `json:"deviceId,omitempty"`
	ActivatedAt  *time.Time `json:"activatedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AdminLicenseResponse wraps a single record.
type AdminLicenseResponse struct {
	OK      bool    `json:"ok"`
	License License `json:"license"`
}

// LicenseListResponse is returned by GET /api/admin/licenses.
type LicenseListResponse struct {
	OK       bool      `json:"ok"`
	Licenses []License `json:"licenses"`
}

// RegisterRequest imports an issued key.
type RegisterRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// ExtendRequest sets a new authoritative expiry.
type ExtendRequest struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// ActivityEntry is one audit log row.
type ActivityEntry struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	License     string            `json:"license,omitempty"`
	LicenseHash string            `json:"licenseHash,omitempty"`
	Actor       string            `json:"actor,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type ActivityResponse struct {
	OK      bool            `json:"ok"`
	Entries []ActivityEntry `json:"entries"`
}

// MonitorResponse reports the anomaly detector windows.
type MonitorResponse struct {
	OK            bool  `json:"ok"`
	Enabled       bool  `json:"enabled"`
	Errors        int   `json:"errors"`
	FailedAuths   int   `json:"failedAuths"`
	SlowRequests  int   `json:"slowRequests"`
	WindowMs      int64 `json:"windowMs"`
	SlowRequestMs int64 `json:"slowRequestMs"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database  string `json:"database"`
	PublicKey string `json:"public_key"`
}
