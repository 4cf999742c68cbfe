package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"otp-auth-service/internal/admin"
	userdomain "otp-auth-service/internal/user/domain"
)

// AdminHandler serves the user lifecycle endpoints. All routes require an
// authenticated admin.
type AdminHandler struct {
	svc *admin.Service
}

// NewAdminHandler returns an AdminHandler backed by svc.
func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := userdomain.Role(req.Role)
	if req.Role == "" {
		role = userdomain.RoleUser
	}
	actorID, _ := GetUserID(r.Context())
	user, err := h.svc.CreateUser(r.Context(), actorID, req.Email, req.Name, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewUser(user))
}

// ListUsers handles GET /admin/users with limit/offset query parameters.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r, "limit", 0)
	offset := queryInt32(r, "offset", 0)
	users, err := h.svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]*userView, len(users))
	for i, u := range users {
		views[i] = viewUser(u)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

// GetUser handles GET /admin/users/{id}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewUser(user))
}

// DeactivateUser handles POST /admin/users/{id}/deactivate.
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	actorID, _ := GetUserID(r.Context())
	if err := h.svc.DeactivateUser(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ReactivateUser handles POST /admin/users/{id}/reactivate.
func (h *AdminHandler) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	actorID, _ := GetUserID(r.Context())
	if err := h.svc.ReactivateUser(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DeleteUser handles DELETE /admin/users/{id} (soft delete).
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, _ := GetUserID(r.Context())
	if err := h.svc.SoftDeleteUser(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
