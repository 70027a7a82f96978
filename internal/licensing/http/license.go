package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensesdk"
)

type VerifyHandler struct {
	Service *service.BindingService
	Monitor Monitor
}

// ServeHTTP godoc
//
//	@Summary		Verify License
//	@Description	Check a license key's signature and its live server record without binding it.
//	@Tags			License
//	@Accept			json
//	@Produce		json
//	@Param			request	body		licensesdk.VerifyRequest	true	"Verify request"
//	@Success		200		{object}	licensesdk.LicenseResponse	"ok, plan, expiresAt, deviceId, activatedAt, status"
//	@Failure		400		{object}	licensesdk.ErrorResponse	"INVALID_FORMAT, INVALID_SIGNATURE or MALFORMED_PAYLOAD"
//	@Failure		403		{object}	licensesdk.ErrorResponse	"BLOCKED (with status) or EXPIRED"
//	@Failure		404		{object}	licensesdk.ErrorResponse	"NOT_FOUND"
//	@Failure		429		{object}	licensesdk.ErrorResponse	"RATE_LIMITED"
//	@Router			/api/license/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req licensesdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidFormat)
		return
	}

	ent, err := h.Service.Verify(r.Context(), req.LicenseKey)
	if err != nil {
		recordForgery(h.Monitor, err)
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicenseResponse(ent))
}

type ActivateHandler struct {
	Service *service.BindingService
	Monitor Monitor
}

// ServeHTTP godoc
//
//	@Summary		Activate License
//	@Description	Bind a license key to a device on first use. Repeating the call from the bound device succeeds; any other device is refused.
//	@Tags			License
//	@Accept			json
//	@Produce		json
//	@Param			request	body		licensesdk.ActivateRequest	true	"Activate request"
//	@Success		200		{object}	licensesdk.LicenseResponse	"ok, plan, expiresAt, deviceId, activatedAt, status"
//	@Failure		400		{object}	licensesdk.ErrorResponse	"DEVICE_REQUIRED, INVALID_FORMAT, INVALID_SIGNATURE or MALFORMED_PAYLOAD"
//	@Failure		403		{object}	licensesdk.ErrorResponse	"BLOCKED, EXPIRED or DEVICE_MISMATCH"
//	@Failure		404		{object}	licensesdk.ErrorResponse	"NOT_FOUND"
//	@Failure		429		{object}	licensesdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	licensesdk.ErrorResponse	"SERVER_ERROR"
//	@Router			/api/license/activate [post].
func (h *ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req licensesdk.ActivateRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidFormat)
		return
	}

	ent, err := h.Service.Activate(r.Context(), service.ActivateRequest{
		Key:          req.LicenseKey,
		DeviceID:     req.DeviceID,
		CustomerName: req.CustomerName,
		Requester: service.Requester{
			IP:        httpx.IPKeyExtractor(r),
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		recordForgery(h.Monitor, err)
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicenseResponse(ent))
}

// recordForgery counts a bad signature as a failed authentication.
func recordForgery(m Monitor, err error) {
	if m != nil && errors.Is(err, service.ErrInvalidSignature) {
		m.RecordFailedAuth()
	}
}

func toLicenseResponse(ent service.Entitlement) licensesdk.LicenseResponse {
	return licensesdk.LicenseResponse{
		OK:          true,
		Plan:        ent.Plan,
		ExpiresAt:   ent.ExpiresAt,
		DeviceID:    ent.DeviceID,
		ActivatedAt: ent.ActivatedAt,
		Status:      string(ent.Status),
	}
}
