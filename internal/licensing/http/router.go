package http

import (
	"crypto/rsa"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/slogx"

	_ "github.com/aussiebroadwan/daftar/api/licensing" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 16 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	publicKey    *rsa.PublicKey

	LicenseService *service.BindingService

	// Monitor is optional. When set every request feeds it and failed
	// authentications are recorded.
	Monitor Monitor

	// Metrics serves /metrics when set.
	Metrics http.Handler

	AdminAuth httpx.AdminAuthConfig
}

func NewRouter(
	buildVersion string,
	st store.Store,
	publicKey *rsa.PublicKey,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		publicKey:    publicKey,
	}
}

func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if r.Monitor != nil {
		r.middlewares = append(r.middlewares, httpx.ObserveMiddleware(r.Monitor))
	}

	r.registerLicense()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Daftar Licensing API
//	@version		0.1.0
//	@description	License verification and single-device activation for Daftar installations.
//	@description
//	@description				License keys are L1.<payload>.<signature> strings signed with RS256 (RSA-SHA256).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/daftar
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin JWT or service token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLicense() {
	verify := &VerifyHandler{Service: r.LicenseService, Monitor: r.Monitor}
	activate := &ActivateHandler{Service: r.LicenseService, Monitor: r.Monitor}

	// 30 requests per 15 minutes per IP across both endpoints
	limit := httpx.RateLimitByIP(httpx.LicenseLimit)

	r.Mux.Handle("POST /api/license/verify", httpx.Chain(verify, limit))
	r.Mux.Handle("POST /api/license/activate", httpx.Chain(activate, limit))
}

func (r *Router) registerAdmin() {
	auth := r.AdminAuth
	if r.Monitor != nil {
		onFailure := auth.OnFailure
		auth.OnFailure = func(req *http.Request, reason string) {
			r.Monitor.RecordFailedAuth()
			if onFailure != nil {
				onFailure(req, reason)
			}
		}
	}

	secured := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.RateLimitByIP(httpx.AdminLimit), // before auth so guessing is throttled
			httpx.AdminAuthMiddleware(auth),
			httpx.RateLimitByActor(httpx.AdminLimit),
		)
	}

	h := &AdminHandler{Service: r.LicenseService}
	r.Mux.Handle("GET /api/admin/licenses", secured(http.HandlerFunc(h.List)))
	r.Mux.Handle("POST /api/admin/licenses", secured(http.HandlerFunc(h.Register)))
	r.Mux.Handle("GET /api/admin/licenses/{key}", secured(http.HandlerFunc(h.Get)))
	r.Mux.Handle("POST /api/admin/licenses/{key}/block", secured(http.HandlerFunc(h.Block)))
	r.Mux.Handle("POST /api/admin/licenses/{key}/unblock", secured(http.HandlerFunc(h.Unblock)))
	r.Mux.Handle("POST /api/admin/licenses/{key}/reset", secured(http.HandlerFunc(h.Reset)))
	r.Mux.Handle("POST /api/admin/licenses/{key}/extend", secured(http.HandlerFunc(h.Extend)))
	r.Mux.Handle("GET /api/admin/activity", secured(http.HandlerFunc(h.Activity)))

	r.Mux.Handle("GET /api/admin/monitor", secured(MonitorHandler(r.Monitor)))
}

func (r *Router) registerSystem() {
	public := httpx.RateLimitByIP(httpx.PublicLimit)

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.publicKey), public))

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", httpx.Chain(r.Metrics, public))
	}
}
