package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kisanlink/agrimandi/internal/middleware"
	"github.com/kisanlink/agrimandi/internal/repository"
)

// UpdateProfileBody is the JSON body for PUT /api/v1/me.
// Empty fields clear the corresponding column.
type UpdateProfileBody struct {
	Name     string `json:"name"`
	District string `json:"district"`
	State    string `json:"state"`
}

// UserHandler handles profile HTTP requests. All routes are authenticated
// and operate on the caller's own account.
type UserHandler struct {
	users *repository.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile handles GET /api/v1/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("[handler] get profile error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/me
//
// Sets name, district, and state on the caller's account and returns the
// updated user. District and state feed the alert fan-out and the default
// comparison source, so keeping them current matters.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var body UpdateProfileBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := h.users.UpdateProfile(r.Context(), userID, body.Name, body.District, body.State); err != nil {
		log.Printf("[handler] update profile error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("[handler] get profile error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
