// Package server is the HTTP transport: routing, bearer-token middleware,
// and the mapping from service errors to statuses.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"otp-auth-service/internal/admin"
	"otp-auth-service/internal/auth"
	"otp-auth-service/internal/devotp"
	"otp-auth-service/internal/security"
)

// Deps holds the service dependencies for HTTP handlers.
type Deps struct {
	// Auth is the auth service for the OTP login protocol endpoints.
	Auth *auth.Service
	// Admin is the admin service for user lifecycle endpoints.
	Admin *admin.Service
	// Tokens validates Bearer access tokens on protected routes.
	Tokens *security.TokenProvider
	// Users re-checks token subjects against current user state on protected routes.
	Users UserLookup
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, the DB ping is skipped.
	HealthPinger Pinger
	// DevOTP is the dev-only plaintext code store. If nil, /dev/otp is not registered.
	// Set only when dev OTP mode is enabled and not production.
	DevOTP devotp.Store
}

// NewRouter builds the full route table.
//
// Route → handler mapping:
//   - /auth/otp/request, /auth/otp/verify, /auth/refresh, /auth/logout → AuthHandler (public)
//   - /auth/logout-all → AuthHandler (authenticated)
//   - /admin/users...  → AdminHandler (authenticated, admin role)
//   - /healthz         → HealthHandler (public)
//   - /dev/otp         → DevOTPHandler (dev mode only)
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(clientIPMiddleware)

	authHandler := NewAuthHandler(deps.Auth)
	r.HandleFunc("/auth/otp/request", authHandler.RequestOTP).Methods(http.MethodPost)
	r.HandleFunc("/auth/otp/verify", authHandler.VerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	r.HandleFunc("/healthz", NewHealthHandler(deps.HealthPinger).Check).Methods(http.MethodGet)

	requireAuth := authMiddleware(deps.Tokens, deps.Users)

	protected := r.PathPrefix("/auth").Subrouter()
	protected.Use(requireAuth)
	protected.HandleFunc("/logout-all", authHandler.LogoutAll).Methods(http.MethodPost)

	adminHandler := NewAdminHandler(deps.Admin)
	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(requireAuth, adminOnlyMiddleware)
	adminRoutes.HandleFunc("/users", adminHandler.CreateUser).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/users", adminHandler.ListUsers).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/users/{id}", adminHandler.GetUser).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	adminRoutes.HandleFunc("/users/{id}/deactivate", adminHandler.DeactivateUser).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/users/{id}/reactivate", adminHandler.ReactivateUser).Methods(http.MethodPost)

	if deps.DevOTP != nil {
		r.HandleFunc("/dev/otp", NewDevOTPHandler(deps.DevOTP).GetOTP).Methods(http.MethodGet)
	}

	return r
}
