package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/middleware"
	"github.com/rsommers/lakehouse/internal/http/response"
)

// Register creates a new user and returns a session token.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	_, token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "Registration failed")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token})
}

// Login verifies credentials and returns a session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	_, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token})
}

// Me returns the caller's own profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)

	user, err := h.authService.GetUser(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ListUsers returns every user, without password material (admin only).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// DeleteUserCascading removes a user and all their reservations (admin only).
func (h *Handlers) DeleteUserCascading(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.authService.DeleteUserCascading(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User and their reservations deleted successfully",
	})
}

// MakeAdmin promotes a user to admin (admin only).
func (h *Handlers) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.authService.PromoteToAdmin(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Failed to promote user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User promoted to admin successfully",
	})
}

// UpdateProfile applies a partial update to the caller's own profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), ident.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ForgotPassword issues a reset token and emails a reset link.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		// Kept from the original client contract: unknown emails answer 400.
		if errors.Is(err, domain.ErrNotFound) {
			response.BadRequest(w, "User not found")
			return
		}
		writeServiceError(w, r, err, "Failed to process reset request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent",
	})
}

// ResetPassword consumes a reset token from the URL and sets a new password.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, "Missing reset token")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, req.Password); err != nil {
		writeServiceError(w, r, err, "Failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successful",
	})
}
