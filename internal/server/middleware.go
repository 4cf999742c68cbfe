package server

import (
	"context"
	"net"
	"net/http"
	"strings"

	"otp-auth-service/internal/security"
	userdomain "otp-auth-service/internal/user/domain"
)

const bearerPrefix = "bearer "

// UserLookup re-checks the token's subject against current user state, so a
// deactivated or deleted user is cut off even while their access token is
// still cryptographically valid.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// clientIPMiddleware stores the request's client IP in context for audit logging.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), clientIP(r))))
	})
}

// authMiddleware validates the Bearer access token and sets the caller's
// identity in context.
func authMiddleware(tokens *security.TokenProvider, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			user, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			if !user.Active() {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			ctx := WithIdentity(r.Context(), user.ID, user.Email, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminOnlyMiddleware rejects callers whose role is not admin. Must run after
// authMiddleware.
func adminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRole(r.Context())
		if !ok || role != string(userdomain.RoleAdmin) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// clientIP prefers the leftmost X-Forwarded-For entry, then falls back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
