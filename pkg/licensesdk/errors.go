package licensesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeMalformedPayload = "MALFORMED_PAYLOAD"
	CodeNotFound         = "NOT_FOUND"
	CodeBlocked          = "BLOCKED"
	CodeExpired          = "EXPIRED"
	CodeDeviceRequired   = "DEVICE_REQUIRED"
	CodeDeviceMismatch   = "DEVICE_MISMATCH"

	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbiddenAdminOnly = "FORBIDDEN_ADMIN_ONLY"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServerError        = "SERVER_ERROR"
)

// APIError is a failed response from the service.
type APIError struct {
	StatusCode int
	Code       string

	// LicenseStatus is set with CodeBlocked.
	LicenseStatus string
}

func (e *APIError) Error() string {
	if e.LicenseStatus != "" {
		return fmt.Sprintf("licensing: %s (%s, http %d)", e.Code, e.LicenseStatus, e.StatusCode)
	}
	return fmt.Sprintf("licensing: %s (http %d)", e.Code, e.StatusCode)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response into an *APIError, falling
// back to SERVER_ERROR when the body is not an error envelope.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:    resp.StatusCode,
			Code:          errResp.Error,
			LicenseStatus: errResp.Status,
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Code: CodeServerError}
}
