package handler

import (
	"net/http"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/service"
)

// AuthHandler holds the signup/login HTTP handlers.
type AuthHandler struct {
	auth *service.Auth
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *service.Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// LogIn handles POST /auth/login
func (h *AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, user, err := h.auth.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		// Bad credentials are 401 here, not the usual 403.
		if apperror.IsKind(err, apperror.Authorization) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}
