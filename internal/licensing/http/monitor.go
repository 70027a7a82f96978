package http

import (
	"net/http"

	"github.com/aussiebroadwan/daftar/internal/licensing/monitor"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensesdk"
)

// Monitor is the part of the anomaly detector the HTTP layer feeds and reads.
type Monitor interface {
	httpx.RequestObserver
	RecordFailedAuth()
	Snapshot() monitor.Snapshot
	Enabled() bool
}

// MonitorHandler godoc
//
//	@Summary		Anomaly Windows
//	@Description	Current counts of server errors, failed authentications and slow requests inside the detection window.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	licensesdk.MonitorResponse	"ok, enabled, errors, failedAuths, slowRequests, windowMs, slowRequestMs"
//	@Failure		401	{object}	licensesdk.ErrorResponse	"UNAUTHENTICATED or INVALID_TOKEN"
//	@Failure		403	{object}	licensesdk.ErrorResponse	"FORBIDDEN_ADMIN_ONLY"
//	@Security		BearerAuth
//	@Router			/api/admin/monitor [get].
func MonitorHandler(m Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			httpx.WriteJSON(w, http.StatusOK, licensesdk.MonitorResponse{OK: true})
			return
		}

		snap := m.Snapshot()
		httpx.WriteJSON(w, http.StatusOK, licensesdk.MonitorResponse{
			OK:            true,
			Enabled:       m.Enabled(),
			Errors:        snap.Errors,
			FailedAuths:   snap.FailedAuths,
			SlowRequests:  snap.SlowRequests,
			WindowMs:      snap.WindowMs,
			SlowRequestMs: snap.SlowRequestMs,
		})
	}
}
