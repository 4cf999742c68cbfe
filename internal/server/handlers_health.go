package server

import (
	"context"
	"net/http"
	"time"

	"otp-auth-service/internal/devotp"
)

// Pinger is the readiness probe dependency, typically *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /healthz. Reports not-ready when the database is
// unreachable.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler returns a HealthHandler. pinger may be nil; then the DB
// check is skipped.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DevOTPHandler exposes the last issued plaintext code for an email/purpose.
// Registered only when dev OTP mode is enabled, which config refuses in
// production.
type DevOTPHandler struct {
	store devotp.Store
}

// NewDevOTPHandler returns a DevOTPHandler over store.
func NewDevOTPHandler(store devotp.Store) *DevOTPHandler {
	return &DevOTPHandler{store: store}
}

func (h *DevOTPHandler) GetOTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	purpose := r.URL.Query().Get("purpose")
	if email == "" || purpose == "" {
		writeError(w, http.StatusBadRequest, "email and purpose are required")
		return
	}
	code, ok := h.store.Get(r.Context(), email, purpose)
	if !ok {
		writeError(w, http.StatusNotFound, "no code on record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "purpose": purpose, "code": code})
}
