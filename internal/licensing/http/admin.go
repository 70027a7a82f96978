package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensesdk"
)

const (
	defaultActivityLimit = 100
	maxActivityLimit     = 1000
)

// AdminHandler serves the authenticated license administration endpoints.
type AdminHandler struct {
	Service *service.BindingService
}

// List godoc
//
//	@Summary		List Licenses
//	@Description	List license records, newest first, optionally filtered by a comma separated status list.
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query		string							false	"ACTIVE,LOCKED,USED,BLOCKED"
//	@Success		200		{object}	licensesdk.LicenseListResponse	"ok, licenses"
//	@Failure		401		{object}	licensesdk.ErrorResponse		"UNAUTHENTICATED or INVALID_TOKEN"
//	@Failure		403		{object}	licensesdk.ErrorResponse		"FORBIDDEN_ADMIN_ONLY"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses [get].
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	var statuses []domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, domain.ParseStatus(s))
			}
		}
	}

	licenses, err := h.Service.List(r.Context(), statuses...)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := time.Now()
	out := make([]licensesdk.License, 0, len(licenses))
	for _, l := range licenses {
		out = append(out, toAdminLicense(l, now))
	}
	httpx.WriteJSON(w, http.StatusOK, licensesdk.LicenseListResponse{OK: true, Licenses: out})
}

// Register godoc
//
//	@Summary		Register License
//	@Description	Import an issued license key. The signature is checked and the payload seeds the record.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		licensesdk.RegisterRequest		true	"Register request"
//	@Success		201		{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		400		{object}	licensesdk.ErrorResponse		"INVALID_FORMAT, INVALID_SIGNATURE or MALFORMED_PAYLOAD"
//	@Failure		409		{object}	licensesdk.ErrorResponse		"ALREADY_EXISTS"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses [post].
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req licensesdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidRequest)
		return
	}

	lic, err := h.Service.Register(r.Context(), req.LicenseKey, httpx.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, licensesdk.AdminLicenseResponse{OK: true, License: toAdminLicense(lic, time.Now())})
}

// Get godoc
//
//	@Summary		Get License
//	@Tags			Admin
//	@Produce		json
//	@Param			key	path		string							true	"License key"
//	@Success		200	{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		404	{object}	licensesdk.ErrorResponse		"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses/{key} [get].
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	lic, err := h.Service.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, licensesdk.AdminLicenseResponse{OK: true, License: toAdminLicense(lic, time.Now())})
}

// Block godoc
//
//	@Summary		Block License
//	@Description	Set the record to BLOCKED. Every later verify and activate fails until it is unblocked.
//	@Tags			Admin
//	@Produce		json
//	@Param			key	path		string							true	"License key"
//	@Success		200	{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		404	{object}	licensesdk.ErrorResponse		"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses/{key}/block [post].
func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Block)
}

// Unblock godoc
//
//	@Summary		Unblock License
//	@Description	Restore a blocked record to USED when it is bound, ACTIVE otherwise.
//	@Tags			Admin
//	@Produce		json
//	@Param			key	path		string							true	"License key"
//	@Success		200	{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		404	{object}	licensesdk.ErrorResponse		"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses/{key}/unblock [post].
func (h *AdminHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Unblock)
}

// Reset godoc
//
//	@Summary		Reset License Binding
//	@Description	Clear the device binding and force ACTIVE so the next activation binds afresh.
//	@Tags			Admin
//	@Produce		json
//	@Param			key	path		string							true	"License key"
//	@Success		200	{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		404	{object}	licensesdk.ErrorResponse		"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses/{key}/reset [post].
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Reset)
}

// Extend godoc
//
//	@Summary		Extend License
//	@Description	Set a new authoritative expiry on the record.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string							true	"License key"
//	@Param			request	body		licensesdk.ExtendRequest		true	"Extend request"
//	@Success		200		{object}	licensesdk.AdminLicenseResponse	"ok, license"
//	@Failure		400		{object}	licensesdk.ErrorResponse		"INVALID_REQUEST"
//	@Failure		404		{object}	licensesdk.ErrorResponse		"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/api/admin/licenses/{key}/extend [post].
func (h *AdminHandler) Extend(w http.ResponseWriter, r *http.Request) {
	var req licensesdk.ExtendRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidRequest)
		return
	}

	lic, err := h.Service.Extend(r.Context(), r.PathValue("key"), req.ExpiresAt, httpx.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, licensesdk.AdminLicenseResponse{OK: true, License: toAdminLicense(lic, time.Now())})
}

// Activity godoc
//
//	@Summary		Recent Activity
//	@Description	Newest audit log entries. License keys appear masked only.
//	@Tags			Admin
//	@Produce		json
//	@Param			limit	query		int							false	"Max entries (default 100, max 1000)"
//	@Success		200		{object}	licensesdk.ActivityResponse	"ok, entries"
//	@Security		BearerAuth
//	@Router			/api/admin/activity [get].
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, licensesdk.CodeInvalidRequest)
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.Service.RecentActivity(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]licensesdk.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, licensesdk.ActivityEntry{
			ID:          e.ID,
			Kind:        e.Kind,
			License:     e.LicenseMask,
			LicenseHash: e.LicenseHash,
			Actor:       e.Actor,
			Details:     e.Details,
			CreatedAt:   e.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, licensesdk.ActivityResponse{OK: true, Entries: out})
}

type transitionFunc func(ctx context.Context, key, actor string) (domain.License, error)

func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, op transitionFunc) {
	lic, err := op(r.Context(), r.PathValue("key"), httpx.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, licensesdk.AdminLicenseResponse{OK: true, License: toAdminLicense(lic, time.Now())})
}

func toAdminLicense(l domain.License, now time.Time) licensesdk.License {
	return licensesdk.License{
		ID:           l.ID,
		LicenseKey:   l.Key,
		Masked:       domain.MaskLicenseKey(l.Key),
		Status:       string(l.Status),
		Plan:         l.Plan,
		CustomerName: l.CustomerName,
		ExpiresAt:    l.ExpiresAt,
		Expired:      l.IsExpired(now),
		DeviceID:     l.DeviceID,
		ActivatedAt:  l.ActivatedAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}
