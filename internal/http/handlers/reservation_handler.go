package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/middleware"
	"github.com/rsommers/lakehouse/internal/http/response"
)

// ListReservations returns the whole calendar, earliest start first
// (admin only).
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// MyReservations returns the caller's own bookings, earliest start first.
func (h *Handlers) MyReservations(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)

	reservations, err := h.reservationService.ListForUser(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// CreateReservation books a date range for the calling user.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)

	var req domain.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.reservationService.Create(r.Context(), ident, &req)
	if err != nil {
		writeServiceError(w, r, err, "Could not create reservation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Reservation created",
		"reservation": res,
	})
}

// UpdateReservation changes a booking's dates; owner or admin only.
func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)
	h.updateReservation(w, r, ident)
}

// DeleteReservation removes a booking; owner or admin only.
func (h *Handlers) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)
	h.deleteReservation(w, r, ident)
}

// AdminUpdateReservation changes any booking. The route is admin-gated, and
// the admin identity bypasses the ownership check.
func (h *Handlers) AdminUpdateReservation(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)
	h.updateReservation(w, r, ident)
}

// AdminDeleteReservation removes any booking (admin only).
func (h *Handlers) AdminDeleteReservation(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.IdentityFrom(r)
	h.deleteReservation(w, r, ident)
}

func (h *Handlers) updateReservation(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	id, err := urlID(r)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	var patch domain.ReservationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.reservationService.Update(r.Context(), ident, id, &patch)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update reservation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Reservation updated successfully",
		"reservation": res,
	})
}

func (h *Handlers) deleteReservation(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	id, err := urlID(r)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	if err := h.reservationService.Delete(r.Context(), ident, id); err != nil {
		writeServiceError(w, r, err, "Failed to delete reservation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Reservation deleted successfully",
	})
}
