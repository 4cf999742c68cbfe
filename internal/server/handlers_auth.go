package server

import (
	"encoding/json"
	"net/http"
	"time"

	"otp-auth-service/internal/auth"
	otpdomain "otp-auth-service/internal/otp/domain"
	userdomain "otp-auth-service/internal/user/domain"
)

// AuthHandler serves the OTP login protocol endpoints.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler returns an AuthHandler backed by svc.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type requestOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Role        string     `json:"role"`
	Verified    bool       `json:"verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *userView `json:"user,omitempty"`
}

func viewUser(u *userdomain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Verified:    u.Verified,
		LastLoginAt: u.LastLoginAt,
	}
}

// RequestOTP handles POST /auth/otp/request. The response never carries the code.
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Email, otpdomain.Purpose(req.Purpose)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "code sent"})
}

// VerifyOTP handles POST /auth/otp/verify and returns the token pair on success.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.RedeemCode(r.Context(), req.Email, req.Code, otpdomain.Purpose(req.Purpose), r.UserAgent(), GetClientIP(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		User:         viewUser(res.User),
	})
}

// Refresh handles POST /auth/refresh. Only a new access token is returned;
// the presented refresh token stays valid.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
	})
}

// Logout handles POST /auth/logout. Always succeeds for well-formed requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// LogoutAll handles POST /auth/logout-all for the authenticated caller.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}
	if err := h.svc.LogoutAll(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
