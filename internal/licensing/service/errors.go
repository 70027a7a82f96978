package service

import (
	"errors"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
)

// Code is the stable, client-visible reason a license operation failed.
type Code string

const (
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeInvalidSignature Code = "INVALID_SIGNATURE"
	CodeMalformedPayload Code = "MALFORMED_PAYLOAD"
	CodeNotFound         Code = "NOT_FOUND"
	CodeBlocked          Code = "BLOCKED"
	CodeExpired          Code = "EXPIRED"
	CodeDeviceRequired   Code = "DEVICE_REQUIRED"
	CodeDeviceMismatch   Code = "DEVICE_MISMATCH"
)

// Error is a coded license failure. Status is set only for CodeBlocked.
type Error struct {
	Code   Code
	Status domain.Status
}

func (e *Error) Error() string {
	if e.Status != "" {
		return "license: " + string(e.Code) + " (" + string(e.Status) + ")"
	}
	return "license: " + string(e.Code)
}

// Is matches any *Error with the same code, so a BLOCKED error carrying a
// status still matches ErrBlocked.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidFormat    = &Error{Code: CodeInvalidFormat}
	ErrInvalidSignature = &Error{Code: CodeInvalidSignature}
	ErrMalformedPayload = &Error{Code: CodeMalformedPayload}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrBlocked          = &Error{Code: CodeBlocked}
	ErrExpired          = &Error{Code: CodeExpired}
	ErrDeviceRequired   = &Error{Code: CodeDeviceRequired}
	ErrDeviceMismatch   = &Error{Code: CodeDeviceMismatch}
)

var (
	// ErrStoreUnavailable wraps record store faults. On the read path of
	// side effects it is only logged; on a mutation it is returned.
	ErrStoreUnavailable = errors.New("license store unavailable")

	// ErrNotifyFailed is logged when a notification could not be queued.
	ErrNotifyFailed = errors.New("notification could not be queued")

	ErrLicenseExists = errors.New("license already registered")
	ErrInvalidExpiry = errors.New("invalid expiry")
)

func blocked(status domain.Status) error {
	return &Error{Code: CodeBlocked, Status: status}
}

// CodeOf extracts the code from a coded error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// StatusOf returns the record status attached to a BLOCKED error.
func StatusOf(err error) domain.Status {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return ""
}

// resultLabel is the metrics label for an operation outcome.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := CodeOf(err); ok {
		return string(code)
	}
	if errors.Is(err, ErrLicenseExists) {
		return "ALREADY_EXISTS"
	}
	if errors.Is(err, ErrInvalidExpiry) {
		return "INVALID_REQUEST"
	}
	return "SERVER_ERROR"
}
