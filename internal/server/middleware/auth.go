package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vitrinehq/vitrine/internal/service"
)

type contextKeyAuth string

// IdentityKey is the context key for the authenticated admin identity.
const IdentityKey contextKeyAuth = "admin_identity"

// Authenticate returns an HTTP middleware guarding the admin API. It extracts
// the bearer token from the Authorization header, accepting either the
// "Bearer <token>" form or a raw token, verifies it, and resolves the email
// claim to an administrator identity.
//
// Failure modes, in order: no primary admin configured -> 500 (fail fast
// rather than fail open or closed); missing, undecodable, or unresolvable
// token -> 401. On success the Identity is attached to the request context.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authSvc.Configured() {
				writeAuthError(w, http.StatusInternalServerError, "Server misconfigured: no admin credentials")
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required. Provide a bearer token.")
				return
			}

			email, err := authSvc.VerifyToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			identity, err := authSvc.ResolveIdentity(r.Context(), email)
			if err != nil {
				if errors.Is(err, service.ErrUnknownIdentity) {
					writeAuthError(w, http.StatusUnauthorized, "Unknown identity")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "Identity resolution failed")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperAdmin returns an HTTP middleware that restricts a route to the
// primary admin and super-admin accounts. It must be used after Authenticate
// in the middleware chain.
func RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil || !identity.IsSuperAdmin {
				writeAuthError(w, http.StatusForbidden, "Super admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity extracts the authenticated identity from the context. Returns
// nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *service.Identity {
	if id, ok := ctx.Value(IdentityKey).(*service.Identity); ok {
		return id
	}
	return nil
}

// bearerToken pulls the credential out of the Authorization header. Both
// "Bearer <token>" and a bare token are accepted.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid import cycle with handler package
	w.Write([]byte(`{"error":{"code":` + httpStatusString(status) + `,"message":"` + message + `"}}`))
}

func httpStatusString(code int) string {
	switch code {
	case 401:
		return "401"
	case 403:
		return "403"
	default:
		return "500"
	}
}
