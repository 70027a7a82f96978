package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensesdk"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
)

// statusFor maps a coded license error to its HTTP status.
func statusFor(code service.Code) int {
	switch code {
	case service.CodeInvalidFormat,
		service.CodeInvalidSignature,
		service.CodeMalformedPayload,
		service.CodeDeviceRequired:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeBlocked, service.CodeExpired, service.CodeDeviceMismatch:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the failure envelope for err. Uncoded errors are
// logged and become 500 SERVER_ERROR.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if code, ok := service.CodeOf(err); ok {
		httpx.WriteJSON(w, statusFor(code), licensesdk.ErrorResponse{
			OK:     false,
			Error:  string(code),
			Status: string(service.StatusOf(err)),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrLicenseExists):
		httpx.WriteError(w, http.StatusConflict, licensesdk.CodeAlreadyExists)
	case errors.Is(err, service.ErrInvalidExpiry):
		httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidRequest)
	default:
		slogx.FromContext(r.Context()).Error("license request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, licensesdk.CodeServerError)
	}
}
