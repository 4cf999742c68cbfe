package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"otp-auth-service/internal/admin"
	"otp-auth-service/internal/auth"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service sentinels to HTTP statuses. Unknown errors
// are logged and surface as 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput) || errors.Is(err, admin.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidOrExpiredOTP):
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
	case errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrSessionInvalid):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, admin.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrUserInactive):
		writeError(w, http.StatusForbidden, "user is inactive")
	case errors.Is(err, admin.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, admin.ErrUserDeleted):
		writeError(w, http.StatusGone, "user is deleted")
	case errors.Is(err, auth.ErrServiceUnavailable):
		log.Printf("server: service unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		log.Printf("server: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
