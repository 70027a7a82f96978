package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role allowed on the admin surface.
const RoleAdmin = "admin"

// AdminClaims are the claims carried by admin JWTs.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceToken is a long-lived admin credential stored as an argon2id hash.
type ServiceToken struct {
	Actor string
	Hash  string
}

type AdminAuthConfig struct {
	// JWTSecret verifies HS256 admin tokens. Empty disables JWT auth.
	JWTSecret []byte
	// ServiceTokens are checked for bearer values with the service prefix.
	ServiceTokens []ServiceToken
	// OnFailure, when set, is called for every rejected request.
	OnFailure func(r *http.Request, reason string)
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
	errNotAdmin     = errors.New("admin role required")
)

// AdminAuthMiddleware authenticates admin requests with either an HS256 JWT
// whose role claim is "admin" or a service token. Missing credentials get
// 401 UNAUTHENTICATED, bad ones 401 INVALID_TOKEN and a non-admin role 403
// FORBIDDEN_ADMIN_ONLY.
func AdminAuthMiddleware(cfg AdminAuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			actor, authType, err := authenticateAdmin(cfg, r.Header.Get("Authorization"))
			if err != nil {
				if cfg.OnFailure != nil {
					cfg.OnFailure(r, err.Error())
				}
				log.Warn("admin auth rejected", "reason", err.Error())

				switch {
				case errors.Is(err, errMissingToken):
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_request"`)
					WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED")
				case errors.Is(err, errNotAdmin):
					WriteError(w, http.StatusForbidden, "FORBIDDEN_ADMIN_ONLY")
				default:
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
					WriteError(w, http.StatusUnauthorized, "INVALID_TOKEN")
				}
				return
			}

			ctx := withActor(r.Context(), actor, authType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticateAdmin(cfg AdminAuthConfig, header string) (actor, authType string, err error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", "", errMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return "", "", errMissingToken
	}

	if cryptox.IsServiceToken(raw) {
		for _, st := range cfg.ServiceTokens {
			if cryptox.VerifySecret(raw, st.Hash) == nil {
				return st.Actor, "service_token", nil
			}
		}
		return "", "", errInvalidToken
	}

	if len(cfg.JWTSecret) == 0 {
		return "", "", errInvalidToken
	}

	claims := &AdminClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return cfg.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", "", errInvalidToken
	}
	if claims.Role != RoleAdmin {
		return "", "", errNotAdmin
	}

	actor = claims.Subject
	if actor == "" {
		actor = RoleAdmin
	}
	return actor, "jwt", nil
}

// IssueAdminToken signs an HS256 admin token for subject, valid for ttl.
func IssueAdminToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
